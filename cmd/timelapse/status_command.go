package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"timelapse/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.client().Status(cmd.Context())
			if err != nil {
				return wrapRequestError(err, ctx.apiAddr())
			}
			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(status))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit status as JSON")
	return cmd
}

func renderStatus(status api.StatusResponse) string {
	rows := [][2]string{
		{"Running", yesNo(status.Running)},
		{"PID", strconv.Itoa(status.PID)},
		{"Status", status.Progress.Status},
		{"Progress", fmt.Sprintf("%d/%d", status.Progress.Completed, status.Progress.Total)},
	}
	if status.JobID != "" {
		rows = append(rows, [2]string{"Job", status.JobID})
	}
	if status.LastError != "" {
		rows = append(rows, [2]string{"Last error", status.LastError})
	}
	rows = append(rows, [2]string{"Video ready", yesNo(status.AssetPresent)})
	if status.AssetPresent {
		rows = append(rows, [2]string{"Video size", formatBytes(status.AssetSize)})
		rows = append(rows, [2]string{"Video path", status.AssetPath})
	}
	return renderKV(rows)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
