package cmd

import "github.com/spf13/cobra"

var getCmd = &cobra.Command{
	Use:   "get [job_id]",
	Short: "Show a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		job, err := client.GetJob(args[0])
		if err != nil {
			printError(cmd, err)
			return
		}
		printJob(cmd, job)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
