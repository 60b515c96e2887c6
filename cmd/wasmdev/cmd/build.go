package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h-ikeda/strust/internal/app"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run one toolchain build and exit",
	Long: `Performs the build-start invocation: exactly one toolchain run,
blocking until it resolves. Exits non-zero on a spawn error or a failing
toolchain status so the surrounding build pipeline stops before consuming a
stale artifact.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		outcome, err := app.Build(ctx, app.Options{ConfigPath: configPath})
		if err != nil {
			return err
		}
		if !outcome.Succeeded() {
			return fmt.Errorf("toolchain exited with status %d", outcome.ExitCode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
