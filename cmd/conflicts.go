package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/siteplan/app"
	"github.com/kilianp07/siteplan/core/conflict"
	"github.com/kilianp07/siteplan/core/model"
)

var conflictsJSON bool

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Print the current conflict report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(svc *app.Service) error {
			groups := svc.Snapshot().Conflicts
			if conflictsJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(conflictRows(groups))
			}
			return printConflicts(cmd.OutOrStdout(), groups)
		})
	},
}

func init() {
	conflictsCmd.Flags().BoolVar(&conflictsJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(conflictsCmd)
}

type conflictRow struct {
	ResourceKind string   `json:"resource_kind"`
	ResourceRef  string   `json:"resource_ref"`
	Severity     string   `json:"severity"`
	EventIDs     []string `json:"event_ids"`
}

func conflictRows(groups []model.ConflictGroup) []conflictRow {
	rows := make([]conflictRow, len(groups))
	for i, g := range groups {
		rows[i] = conflictRow{g.ResourceKind.String(), g.ResourceRef, g.Severity.String(), g.EventIDs()}
	}
	return rows
}

func printConflicts(w io.Writer, groups []model.ConflictGroup) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "no conflicts")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tRESOURCE\tREF\tEVENTS")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.Severity, g.ResourceKind, g.ResourceRef, strings.Join(g.EventIDs(), ","))
	}
	s := conflict.Summarize(groups)
	fmt.Fprintf(tw, "\n%d group(s), %d event(s) involved\n", s.Groups, s.EventsInvolved)
	return tw.Flush()
}
