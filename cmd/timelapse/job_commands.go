package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"timelapse/internal/api"
	"timelapse/internal/job"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var startDate string
	var endDate string
	var watch bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a timelapse job over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Start(cmd.Context(), startDate, endDate)
			if err != nil {
				return wrapRequestError(err, ctx.apiAddr())
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			if watch {
				return watchProgress(cmd, ctx)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "First capture day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&endDate, "end", "", "Last capture day, YYYY-MM-DD (defaults to start)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Follow progress until the job finishes")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newProgressCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Print the current job progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := ctx.client().Progress(cmd.Context())
			if err != nil {
				return wrapRequestError(err, ctx.apiAddr())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d/%d\n", progress.Status, progress.Completed, progress.Total)
			return nil
		},
	}
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow job progress until it finishes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchProgress(cmd, ctx)
		},
	}
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Request cancellation of the running job",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Cancel(cmd.Context())
			if err != nil {
				return wrapRequestError(err, ctx.apiAddr())
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

// watchProgress polls the daemon and drives a progress bar through the
// download phase, then reports the later stages as they pass.
func watchProgress(cmd *cobra.Command, ctx *commandContext) error {
	client := ctx.client()

	var bar *progressbar.ProgressBar
	lastStatus := ""

	for {
		progress, err := client.Progress(cmd.Context())
		if err != nil {
			return wrapRequestError(err, ctx.apiAddr())
		}

		status := progress.Status
		if status != lastStatus {
			switch job.Status(status) {
			case job.StatusAssembling, job.StatusConverting:
				if bar != nil {
					_ = bar.Finish()
					bar = nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s...\n", status)
			}
			lastStatus = status
		}

		switch job.Status(status) {
		case job.StatusDownloading:
			if bar == nil && progress.Total > 0 {
				bar = progressbar.NewOptions(progress.Total,
					progressbar.OptionSetDescription("downloading"),
					progressbar.OptionSetWriter(cmd.OutOrStdout()),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			if bar != nil {
				_ = bar.Set(progress.Completed)
			}
		case job.StatusDone:
			if bar != nil {
				_ = bar.Finish()
			}
			fmt.Fprintln(cmd.OutOrStdout(), "timelapse complete")
			return nil
		case job.StatusIdle:
			if bar != nil {
				_ = bar.Finish()
			}
			return idleOutcome(cmd, client, ctx)
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// idleOutcome distinguishes a cancelled or failed job from a daemon that never
// had one: the status endpoint carries the last error when the job ended badly.
func idleOutcome(cmd *cobra.Command, client *api.Client, ctx *commandContext) error {
	status, err := client.Status(cmd.Context())
	if err != nil {
		return wrapRequestError(err, ctx.apiAddr())
	}
	if status.LastError != "" {
		return errors.New("job failed: " + status.LastError)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "job is idle")
	return nil
}
