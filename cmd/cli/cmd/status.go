package cmd

import (
	"fmt"
	"time"

	"fieldops/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var statusCmd = &cobra.Command{
	Use:   "status [job_id] [status]",
	Short: "Move a job to a new status",
	Long: `Move a job to pending, in_progress or completed, optionally updating fields
in the same write.

Completing a job stamps its completion date and appends the standard safety
sentence to the action taken, once. Reopening a completed job clears the
completion date and keeps everything else.

Example:
  fsctl status <job-id> completed --action-taken "Replaced igniter." --departure 2024-03-01T11:30:00Z`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		fields, err := jobFieldsFromFlags(cmd)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}

		job, err := client.Transition(args[0], api.TransitionRequest{Status: args[1], JobFields: fields})
		if err != nil {
			printError(cmd, err)
			return
		}
		printJob(cmd, job)
	},
}

var amendCmd = &cobra.Command{
	Use:   "amend [job_id]",
	Short: "Edit a job without changing its status",
	Long: `Edit a job's fields and keep its status. Amending a completed job keeps its
completion date and never duplicates the standard safety sentence.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		if client == nil {
			return
		}

		fields, err := jobFieldsFromFlags(cmd)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}

		job, err := client.Amend(args[0], api.AmendRequest{JobFields: fields})
		if err != nil {
			printError(cmd, err)
			return
		}
		printJob(cmd, job)
	},
}

func addJobFieldFlags(flags *pflag.FlagSet) {
	flags.String("action-taken", "", "Work performed")
	flags.String("arrival", "", "Arrival time (RFC 3339)")
	flags.String("departure", "", "Departure time (RFC 3339)")
	flags.String("service-type", "", "Service type")
	flags.StringP("description", "d", "", "Problem description")
	flags.String("technician", "", "Reassign to technician ID")
}

// jobFieldsFromFlags sends only the flags the user set, so an omitted flag
// leaves the stored value alone.
func jobFieldsFromFlags(cmd *cobra.Command) (api.JobFields, error) {
	flags := cmd.Flags()
	var fields api.JobFields

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	fields.ActionTaken = str("action-taken")
	fields.ServiceType = str("service-type")
	fields.Description = str("description")
	fields.TechnicianID = str("technician")

	for _, tf := range []struct {
		flag string
		dst  **time.Time
	}{
		{"arrival", &fields.ArrivalTime},
		{"departure", &fields.DepartureTime},
	} {
		v := str(tf.flag)
		if v == nil {
			continue
		}
		t, err := time.Parse(time.RFC3339, *v)
		if err != nil {
			return fields, fmt.Errorf("invalid --%s: %w", tf.flag, err)
		}
		*tf.dst = &t
	}
	return fields, nil
}

func init() {
	addJobFieldFlags(statusCmd.Flags())
	addJobFieldFlags(amendCmd.Flags())

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(amendCmd)
}
