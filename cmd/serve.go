package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/siteplan/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calendar HTTP API and Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return withService(ctx, func(svc *app.Service) error {
			return svc.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
