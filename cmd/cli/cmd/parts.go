package cmd

import (
	"strconv"

	"fieldops/pkg/api"

	"github.com/spf13/cobra"
)

var partsCmd = &cobra.Command{
	Use:   "parts",
	Short: "Edit a job's parts and labour",
	Long: `Edit the parts list of a job. Labour lines (any description matching
"labour" or "labor") move in steps of 0.5, everything else in steps of 1.
Quantities never go below zero.`,
}

var partsAddCmd = &cobra.Command{
	Use:   "add [job_id] [description]",
	Short: "Add a part with quantity 1",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		editParts(cmd, args[0], api.PartsEditRequest{Op: "add", Description: args[1]})
	},
}

var partsRemoveCmd = &cobra.Command{
	Use:   "remove [job_id] [index]",
	Short: "Remove the part at index",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			cmd.Printf("Error: invalid index %q\n", args[1])
			return
		}
		editParts(cmd, args[0], api.PartsEditRequest{Op: "remove", Index: &index})
	},
}

var partsAdjustCmd = &cobra.Command{
	Use:   "adjust [job_id] [index]",
	Short: "Change the quantity of the part at index by --steps steps",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			cmd.Printf("Error: invalid index %q\n", args[1])
			return
		}
		steps, _ := cmd.Flags().GetInt("steps")
		editParts(cmd, args[0], api.PartsEditRequest{Op: "adjust", Index: &index, Steps: steps})
	},
}

var partsSetCmd = &cobra.Command{
	Use:   "set [job_id] [index] [qty]",
	Short: "Set the quantity of the part at index",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			cmd.Printf("Error: invalid index %q\n", args[1])
			return
		}
		qty, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			cmd.Printf("Error: invalid quantity %q\n", args[2])
			return
		}
		editParts(cmd, args[0], api.PartsEditRequest{Op: "set", Index: &index, Qty: qty})
	},
}

func editParts(cmd *cobra.Command, jobID string, req api.PartsEditRequest) {
	client := newClient(cmd)
	if client == nil {
		return
	}

	job, err := client.EditParts(jobID, req)
	if err != nil {
		printError(cmd, err)
		return
	}
	printJob(cmd, job)
}

func init() {
	partsAdjustCmd.Flags().Int("steps", 1, "Steps to add; negative to subtract")

	partsCmd.AddCommand(partsAddCmd, partsRemoveCmd, partsAdjustCmd, partsSetCmd)
	rootCmd.AddCommand(partsCmd)
}
