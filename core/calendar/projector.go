package calendar

import (
	"errors"
	"sort"
	"time"

	"github.com/kilianp07/siteplan/core/conflict"
	"github.com/kilianp07/siteplan/core/model"
)

// Axis scales the 24 hour time axis of day and week views.
type Axis struct {
	UnitsPerHour float64 `json:"units_per_hour"`
}

// Validate checks that the axis has a positive scale.
func (a Axis) Validate() error {
	if a.UnitsPerHour <= 0 {
		return errors.New("units_per_hour must be positive")
	}
	return nil
}

// PositionedEvent is an event segment placed on a time axis. Events crossing
// midnight produce one segment per day they touch.
type PositionedEvent struct {
	Event       model.Event
	Day         Date
	Column      int
	Offset      float64
	Length      float64
	HasConflict bool
	// ContinuesBefore is set when the event started on an earlier day.
	ContinuesBefore bool
	// ContinuesAfter is set when the event ends on a later day.
	ContinuesAfter bool
}

// MarkedEvent is a month view entry.
type MarkedEvent struct {
	Event       model.Event
	HasConflict bool
}

// Projection is the result of projecting an event set onto a view.
type Projection struct {
	View       ViewState
	RangeStart time.Time
	RangeEnd   time.Time
	// Positioned is filled for day and week views.
	Positioned []PositionedEvent
	// Days is filled for month views.
	Days map[Date][]MarkedEvent
}

// Projector lays events out on day, week and month grids. Conflict state is
// always supplied through a conflict.Index built from the detector's report.
type Projector struct {
	Axis      Axis
	Navigator Navigator
}

// NewProjector validates the axis and returns a Projector.
func NewProjector(axis Axis, nav Navigator) (Projector, error) {
	if err := axis.Validate(); err != nil {
		return Projector{}, err
	}
	return Projector{Axis: axis, Navigator: nav}, nil
}

// EventsForDay returns the segments of events intersecting the local day
// containing day.
func (p Projector) EventsForDay(events []model.Event, day time.Time, idx conflict.Index) []PositionedEvent {
	start := p.Navigator.StartOfDay(day)
	out := p.positionDay(events, start, 0, idx)
	sortPositioned(out)
	return out
}

// EventsForWeek returns the segments of events over the seven local days
// starting with the day containing weekStart. Column is the day index.
func (p Projector) EventsForWeek(events []model.Event, weekStart time.Time, idx conflict.Index) []PositionedEvent {
	start := p.Navigator.StartOfDay(weekStart)
	var out []PositionedEvent
	for col := 0; col < 7; col++ {
		out = append(out, p.positionDay(events, start.AddDate(0, 0, col), col, idx)...)
	}
	sortPositioned(out)
	return out
}

// EventsForMonth buckets events into every date of the month grid they touch.
// An event is placed on each date from its local start date to its local end
// date inclusive; an end at local midnight does not touch the new date.
func (p Projector) EventsForMonth(events []model.Event, monthAnchor time.Time, idx conflict.Index) map[Date][]MarkedEvent {
	loc := p.Navigator.loc()
	gridStart, gridEnd := p.Navigator.VisibleRange(ViewState{Mode: ViewMonth, Anchor: monthAnchor})
	first := DateOf(gridStart)
	last := DateOf(gridEnd.AddDate(0, 0, -1))

	out := make(map[Date][]MarkedEvent)
	for _, e := range events {
		from := DateOf(e.Start.In(loc))
		to := DateOf(e.End.In(loc))
		if end := e.End.In(loc); end.Equal(to.In(loc)) && from.Before(to) {
			to = to.AddDays(-1)
		}
		if to.Before(first) || last.Before(from) {
			continue
		}
		if from.Before(first) {
			from = first
		}
		if last.Before(to) {
			to = last
		}
		entry := MarkedEvent{Event: e, HasConflict: idx.HasConflict(e.ID)}
		for d := from; !to.Before(d); d = d.AddDays(1) {
			out[d] = append(out[d], entry)
		}
	}
	for d := range out {
		bucket := out[d]
		sort.Slice(bucket, func(i, j int) bool {
			a, b := bucket[i].Event, bucket[j].Event
			if !a.Start.Equal(b.Start) {
				return a.Start.Before(b.Start)
			}
			return a.ID < b.ID
		})
	}
	return out
}

// Project dispatches on the view mode. Week views start on the navigator's
// configured first weekday.
func (p Projector) Project(events []model.Event, v ViewState, idx conflict.Index) Projection {
	start, end := p.Navigator.VisibleRange(v)
	proj := Projection{View: v, RangeStart: start, RangeEnd: end}
	switch v.Mode {
	case ViewDay:
		proj.Positioned = p.EventsForDay(events, start, idx)
	case ViewMonth:
		proj.Days = p.EventsForMonth(events, v.Anchor, idx)
	default:
		proj.Positioned = p.EventsForWeek(events, start, idx)
	}
	return proj
}

func (p Projector) positionDay(events []model.Event, dayStart time.Time, col int, idx conflict.Index) []PositionedEvent {
	dayEnd := dayStart.AddDate(0, 0, 1)
	var out []PositionedEvent
	for _, e := range events {
		if !e.Start.Before(dayEnd) || !dayStart.Before(e.End) {
			continue
		}
		segStart, segEnd := e.Start, e.End
		if segStart.Before(dayStart) {
			segStart = dayStart
		}
		if segEnd.After(dayEnd) {
			segEnd = dayEnd
		}
		from, to := p.hourOfDay(segStart, dayStart), 24.0
		if segEnd.Before(dayEnd) {
			to = p.hourOfDay(segEnd, dayStart)
		}
		if to < from {
			to = from
		}
		out = append(out, PositionedEvent{
			Event:           e,
			Day:             DateOf(dayStart),
			Column:          col,
			Offset:          from * p.Axis.UnitsPerHour,
			Length:          (to - from) * p.Axis.UnitsPerHour,
			HasConflict:     idx.HasConflict(e.ID),
			ContinuesBefore: e.Start.Before(dayStart),
			ContinuesAfter:  e.End.After(dayEnd),
		})
	}
	return out
}

// hourOfDay is the wall clock time of t in hours. Offsets follow the clock
// rather than elapsed time so DST days still map onto a 24 hour axis.
func (p Projector) hourOfDay(t, dayStart time.Time) float64 {
	if !t.After(dayStart) {
		return 0
	}
	h, m, sec := t.In(p.Navigator.loc()).Clock()
	return float64(h) + float64(m)/60 + float64(sec)/3600 + float64(t.Nanosecond())/float64(time.Hour)
}

func sortPositioned(ps []PositionedEvent) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Column != ps[j].Column {
			return ps[i].Column < ps[j].Column
		}
		if ps[i].Offset != ps[j].Offset {
			return ps[i].Offset < ps[j].Offset
		}
		return ps[i].Event.ID < ps[j].Event.ID
	})
}
