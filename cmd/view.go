package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	apicalendar "github.com/kilianp07/siteplan/api/calendar"
	"github.com/kilianp07/siteplan/app"
	"github.com/kilianp07/siteplan/core/calendar"
	"github.com/kilianp07/siteplan/core/conflict"
)

var (
	viewMode   string
	viewAnchor string
	viewNext   bool
	viewPrev   bool
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print a day, week or month projection of the schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		if viewNext && viewPrev {
			return fmt.Errorf("--next and --prev are mutually exclusive")
		}
		mode, err := calendar.ParseViewMode(viewMode)
		if err != nil {
			return err
		}
		return withService(cmd.Context(), func(svc *app.Service) error {
			nav := svc.Navigator()
			v := nav.Today(calendar.ViewState{Mode: mode}, time.Now())
			if viewAnchor != "" {
				if v.Anchor, err = apicalendar.ParseAnchor(viewAnchor, nav.Location); err != nil {
					return err
				}
			}
			switch {
			case viewNext:
				v = calendar.Advance(v, calendar.Next)
			case viewPrev:
				v = calendar.Advance(v, calendar.Prev)
			}
			snap := svc.Snapshot()
			proj := svc.Projector().Project(snap.Events, v, conflict.NewIndex(snap.Conflicts))
			return printProjection(cmd.OutOrStdout(), nav, proj)
		})
	},
}

func init() {
	viewCmd.Flags().StringVar(&viewMode, "mode", "week", "view mode: day, week or month")
	viewCmd.Flags().StringVar(&viewAnchor, "anchor", "", "anchor date (YYYY-MM-DD or RFC3339), defaults to now")
	viewCmd.Flags().BoolVar(&viewNext, "next", false, "move one unit forward")
	viewCmd.Flags().BoolVar(&viewPrev, "prev", false, "move one unit back")
	rootCmd.AddCommand(viewCmd)
}

func printProjection(w io.Writer, nav calendar.Navigator, p calendar.Projection) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s view %s .. %s\n\n", p.View.Mode, p.RangeStart.Format("2006-01-02"),
		p.RangeEnd.AddDate(0, 0, -1).Format("2006-01-02"))
	if p.View.Mode == calendar.ViewMonth {
		for _, d := range nav.Days(p.View) {
			entries := p.Days[d]
			if len(entries) == 0 {
				continue
			}
			titles := make([]string, len(entries))
			for i, e := range entries {
				titles[i] = e.Event.ID + conflictMark(e.HasConflict)
			}
			fmt.Fprintf(tw, "%s\t%s\n", d, strings.Join(titles, ", "))
		}
		return tw.Flush()
	}
	fmt.Fprintln(tw, "DAY\tFROM\tTO\tEVENT\tTITLE\tKIND\t")
	for _, pe := range p.Positioned {
		from := pe.Event.Start
		if pe.ContinuesBefore {
			from = pe.Day.In(nav.Location)
		}
		to := pe.Event.End
		if pe.ContinuesAfter {
			to = pe.Day.AddDays(1).In(nav.Location)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", pe.Day,
			from.In(nav.Location).Format("15:04"), to.In(nav.Location).Format("15:04"),
			pe.Event.ID, pe.Event.Title, pe.Event.Kind, conflictMark(pe.HasConflict))
	}
	return tw.Flush()
}

func conflictMark(conflicting bool) string {
	if conflicting {
		return " [!]"
	}
	return ""
}
