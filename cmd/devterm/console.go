package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/devterm/internal/transport/cli"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:          "console <device>",
	Short:        "Open an interactive session in this terminal",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// Logs go to stderr to keep the session readable.
		var flushLog func()
		ctx, flushLog = setupLoggerTo(ctx, os.Stderr)
		defer flushLog()

		appCfg, gw, cleanup := NewGateway(ctx)
		defer cleanup.Shutdown(ctx)

		rl, err := cli.NewReadLine(gw, appCfg, args[0])
		if err != nil {
			return err
		}
		return rl.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
