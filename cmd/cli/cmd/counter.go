package cmd

import "github.com/spf13/cobra"

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Show the next Service Report Number",
	Long:  `Show the number the next created job will get. Reading it does not use it up.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		result, err := client.Counter()
		if err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("Next Service Report Number: %d\n", result.Next)
	},
}

func init() {
	rootCmd.AddCommand(counterCmd)
}
