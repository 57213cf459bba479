package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var execDevice string

var execCmd = &cobra.Command{
	Use:          "exec --device <device> -- <command>",
	Short:        "Run a single command and print the reply",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLoggerTo(ctx, os.Stderr)
		defer flushLog()

		_, gw, cleanup := NewGateway(ctx)
		defer cleanup.Shutdown(ctx)

		reply, err := gw.Open(execDevice).Respond(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	execCmd.Flags().StringVar(&execDevice, "device", "", "device identifier")
	_ = execCmd.MarkFlagRequired("device")
	rootCmd.AddCommand(execCmd)
}
