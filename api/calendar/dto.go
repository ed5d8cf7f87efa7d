package calendar

import (
	"time"

	"github.com/kilianp07/siteplan/core/calendar"
	"github.com/kilianp07/siteplan/core/model"
	"github.com/kilianp07/siteplan/core/scheduler"
	"github.com/kilianp07/siteplan/core/store"
)

// ConflictGroup is the JSON form of a model.ConflictGroup.
type ConflictGroup struct {
	ResourceKind string   `json:"resource_kind"`
	ResourceRef  string   `json:"resource_ref"`
	Severity     string   `json:"severity"`
	EventIDs     []string `json:"event_ids"`
}

// Snapshot is the JSON form of scheduler.Snapshot.
type Snapshot struct {
	Events    []store.EventRecord `json:"events"`
	Conflicts []ConflictGroup     `json:"conflicts"`
}

// Segment is a positioned event of a day or week view.
type Segment struct {
	EventID         string  `json:"event_id"`
	Title           string  `json:"title"`
	Kind            string  `json:"kind"`
	Color           string  `json:"color"`
	Day             string  `json:"day"`
	Column          int     `json:"column"`
	Offset          float64 `json:"offset"`
	Length          float64 `json:"length"`
	HasConflict     bool    `json:"has_conflict"`
	ContinuesBefore bool    `json:"continues_before,omitempty"`
	ContinuesAfter  bool    `json:"continues_after,omitempty"`
}

// DayEntry is an event listed in a month view cell.
type DayEntry struct {
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"`
	Color       string    `json:"color"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	HasConflict bool      `json:"has_conflict"`
}

// View is the response of GET /api/calendar.
type View struct {
	Mode       string                       `json:"mode"`
	Anchor     time.Time                    `json:"anchor"`
	RangeStart time.Time                    `json:"range_start"`
	RangeEnd   time.Time                    `json:"range_end"`
	Segments   []Segment                    `json:"segments,omitempty"`
	Days       map[calendar.Date][]DayEntry `json:"days,omitempty"`
}

func conflictsOf(groups []model.ConflictGroup) []ConflictGroup {
	out := make([]ConflictGroup, len(groups))
	for i, g := range groups {
		out[i] = ConflictGroup{
			ResourceKind: g.ResourceKind.String(),
			ResourceRef:  g.ResourceRef,
			Severity:     g.Severity.String(),
			EventIDs:     g.EventIDs(),
		}
	}
	return out
}

func snapshotOf(s scheduler.Snapshot) Snapshot {
	return Snapshot{Events: store.RecordsOf(s.Events), Conflicts: conflictsOf(s.Conflicts)}
}

func viewOf(p calendar.Projection) View {
	v := View{
		Mode:       p.View.Mode.String(),
		Anchor:     p.View.Anchor,
		RangeStart: p.RangeStart,
		RangeEnd:   p.RangeEnd,
	}
	for _, pe := range p.Positioned {
		v.Segments = append(v.Segments, Segment{
			EventID:         pe.Event.ID,
			Title:           pe.Event.Title,
			Kind:            pe.Event.Kind.String(),
			Color:           pe.Event.Kind.Color(),
			Day:             pe.Day.String(),
			Column:          pe.Column,
			Offset:          pe.Offset,
			Length:          pe.Length,
			HasConflict:     pe.HasConflict,
			ContinuesBefore: pe.ContinuesBefore,
			ContinuesAfter:  pe.ContinuesAfter,
		})
	}
	if p.Days != nil {
		v.Days = make(map[calendar.Date][]DayEntry, len(p.Days))
		for d, entries := range p.Days {
			out := make([]DayEntry, len(entries))
			for i, me := range entries {
				out[i] = DayEntry{
					EventID:     me.Event.ID,
					Title:       me.Event.Title,
					Kind:        me.Event.Kind.String(),
					Color:       me.Event.Kind.Color(),
					Start:       me.Event.Start,
					End:         me.Event.End,
					HasConflict: me.HasConflict,
				}
			}
			v.Days[d] = out
		}
	}
	return v
}
