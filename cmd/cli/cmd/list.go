package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active jobs",
	Long:  `List jobs that are not deleted, newest Service Report Number first.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		flags := cmd.Flags()
		var opts ListOptions
		opts.Status, _ = flags.GetString("status")
		opts.TechnicianID, _ = flags.GetString("technician")
		opts.ClientID, _ = flags.GetString("client")
		opts.Limit, _ = flags.GetInt("limit")
		opts.Offset, _ = flags.GetInt("offset")

		result, err := client.ListJobs(opts)
		if err != nil {
			printError(cmd, err)
			return
		}

		if len(result.Jobs) == 0 {
			cmd.Println("No jobs found.")
			return
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SR#\tSTATUS\tCLIENT\tSITE\tTECHNICIAN\tID")
		for _, job := range result.Jobs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				job.SNPID, job.Status, dash(job.ClientName), dash(job.SiteName), dash(job.TechnicianName), job.ID)
		}
		w.Flush()
	},
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	flags := listCmd.Flags()
	flags.String("status", "", "Filter by status (pending, in_progress, completed)")
	flags.String("technician", "", "Filter by technician ID")
	flags.String("client", "", "Filter by client ID")
	flags.Int("limit", 50, "Maximum number of jobs")
	flags.Int("offset", 0, "Number of jobs to skip")

	rootCmd.AddCommand(listCmd)
}
