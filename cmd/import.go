package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/siteplan/app"
	"github.com/kilianp07/siteplan/core/store"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import events from a YAML or JSON fixture into the configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := store.LoadEvents(args[0])
		if err != nil {
			return err
		}
		return withService(cmd.Context(), func(svc *app.Service) error {
			snap, err := svc.Import(cmd.Context(), events)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d event(s); %d event(s) stored, %d conflict group(s)\n",
				len(events), len(snap.Events), len(snap.Conflicts))
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
