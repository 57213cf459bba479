package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sandevgo/devterm/pkg/log"
	"github.com/sandevgo/devterm/pkg/srv"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the session gateway",
	Long:  `Starts the WebSocket gateway and, when enabled, the SSH gateway. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting devterm")

		services := NewServices(ctx)

		if err := srv.Run(ctx, services, shutdownTimeout); err != nil {
			logger.Error().Err(err).Msg("devterm stopped with error")
			return err
		}

		logger.Info().Msg("devterm has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
