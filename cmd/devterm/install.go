package main

import (
	"path/filepath"

	"github.com/sandevgo/devterm/internal/config"
	"github.com/sandevgo/devterm/internal/service/installer"
	"github.com/sandevgo/devterm/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Create the devterm configuration",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		runtimePath := config.GetRuntimePath()

		// run wizard (includes save step)
		if _, err := installer.RunWizard(runtimePath); err != nil {
			return err
		}

		logger.Info().Msgf("configuration written to %s", filepath.Join(runtimePath, ".env"))
		logger.Info().Msg("Installation complete! You can now run 'devterm start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
