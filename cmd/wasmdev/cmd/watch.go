package cmd

import (
	"github.com/spf13/cobra"

	"github.com/h-ikeda/strust/internal/app"
)

var statusAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild on every relevant source change",
	Long: `Runs the initial build, then watches the crate directory and
triggers one full toolchain invocation per changed source file. Failed
rebuilds leave the previous artifact in place and the session keeps
running. Session state is served over HTTP (health, recent outcomes,
metrics) unless the address is "off".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		return app.Watch(ctx, app.Options{
			ConfigPath: configPath,
			StatusAddr: statusAddr,
		})
	},
}

func init() {
	watchCmd.Flags().StringVar(&statusAddr, "addr", "", `status server address (overrides config, "off" disables)`)
	rootCmd.AddCommand(watchCmd)
}
