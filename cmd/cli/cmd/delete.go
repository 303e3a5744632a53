package cmd

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [job_id]",
	Short: "Delete a job",
	Long: `Delete a job. When the store refuses to remove the record it is flagged
deleted instead and disappears from listings.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		result, err := client.DeleteJob(args[0])
		if err != nil {
			printError(cmd, err)
			return
		}

		if result.Outcome == "soft_deleted" {
			cmd.Printf("✓ Job %s flagged deleted (record kept)\n", result.ID)
			return
		}
		cmd.Printf("✓ Job %s deleted\n", result.ID)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
