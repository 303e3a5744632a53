package cmd

import (
	"fieldops/pkg/api"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new job",
	Long: `Create a new pending job. The controller assigns the next Service Report
Number. Without --technician the job is assigned to you.

Example:
  fsctl create --client 6f1c... --site 9a2e... --description "No heat" --service-type repair`,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		flags := cmd.Flags()
		req := api.CreateJobRequest{}
		req.ClientID = optionalFlag(cmd, "client")
		req.EndCustomerID = optionalFlag(cmd, "end-customer")
		req.SiteID = optionalFlag(cmd, "site")
		req.TechnicianID = optionalFlag(cmd, "technician")
		req.Description, _ = flags.GetString("description")
		req.ServiceType, _ = flags.GetString("service-type")

		job, err := client.CreateJob(req)
		if err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("✓ Job created!\nService Report #%d\nID: %s\n", job.SNPID, job.ID)
	},
}

// optionalFlag returns a pointer to a string flag's value, or nil when the
// flag is empty.
func optionalFlag(cmd *cobra.Command, name string) *string {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return nil
	}
	return &v
}

func init() {
	flags := createCmd.Flags()
	flags.String("client", "", "Client ID")
	flags.String("end-customer", "", "End customer ID")
	flags.String("site", "", "Site ID")
	flags.String("technician", "", "Technician ID (default: you)")
	flags.StringP("description", "d", "", "Problem description")
	flags.String("service-type", "", "Service type, e.g. repair or maintenance")

	rootCmd.AddCommand(createCmd)
}
