package cmd

import (
	"fmt"
	"strings"
	"time"

	"fieldops/pkg/api"

	"github.com/spf13/cobra"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "completed":
		return colorGreen + "✓" + colorReset
	case "in_progress":
		return colorYellow + "⏳" + colorReset
	case "pending":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "completed":
		return icon + " " + colorGreen + status + colorReset
	case "in_progress":
		return icon + " " + colorYellow + status + colorReset
	case "pending":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func printJob(cmd *cobra.Command, job *api.JobResponse) {
	cmd.Printf("%s %sService Report #%d%s\n", statusIcon(job.Status), colorBold, job.SNPID, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, job.ID)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(job.Status))
	if job.Deleted {
		cmd.Printf("%sDeleted:%s     yes\n", colorDim, colorReset)
	}
	if job.ClientName != "" {
		cmd.Printf("%sClient:%s      %s\n", colorDim, colorReset, job.ClientName)
	}
	if job.SiteName != "" {
		cmd.Printf("%sSite:%s        %s, %s\n", colorDim, colorReset, job.SiteName, job.SiteAddress)
	}
	if job.TechnicianName != "" {
		cmd.Printf("%sTechnician:%s  %s\n", colorDim, colorReset, job.TechnicianName)
	}
	if job.ServiceType != "" {
		cmd.Printf("%sService:%s     %s\n", colorDim, colorReset, job.ServiceType)
	}
	if job.Description != "" {
		cmd.Printf("%sProblem:%s     %s\n", colorDim, colorReset, job.Description)
	}
	cmd.Printf("%sArrived:%s     %s\n", colorDim, colorReset, formatTime(job.ArrivalTime))
	cmd.Printf("%sDeparted:%s    %s\n", colorDim, colorReset, formatTime(job.DepartureTime))
	cmd.Printf("%sCompleted:%s   %s\n", colorDim, colorReset, formatTime(job.CompletedDate))

	if len(job.Parts) > 0 {
		cmd.Printf("%sParts:%s\n", colorDim, colorReset)
		for i, p := range job.Parts {
			cmd.Printf("  [%d] %-30s %s\n", i, p.Description, formatQty(p.Qty))
		}
	}
	if job.ActionTaken != "" {
		cmd.Printf("%sAction taken:%s\n", colorDim, colorReset)
		for _, line := range strings.Split(job.ActionTaken, "\n") {
			cmd.Printf("  %s\n", line)
		}
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("Mon, 02 Jan 2006 15:04 MST")
}

// formatQty prints whole quantities without decimals and half steps with one.
func formatQty(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.1f", q)
}
