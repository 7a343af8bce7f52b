package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"timelapse/internal/daemon"
	"timelapse/internal/logging"
)

// newDaemonCommand runs the daemon in the foreground, equivalent to invoking
// the timelapsed binary directly. Useful under service managers that want a
// single executable.
func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the timelapse daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			d, err := daemon.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer func() {
				if err := d.Close(); err != nil {
					logger.Warn("close daemon", logging.Error(err))
				}
			}()

			if err := d.Start(signalCtx); err != nil {
				return fmt.Errorf("start daemon: %w", err)
			}

			<-signalCtx.Done()
			logger.Info("shutting down")
			d.Stop()
			return nil
		},
	}
}
