package calendar

import (
	"fmt"
	"strings"
	"time"
)

// ViewMode is the granularity of a calendar view.
type ViewMode int

const (
	ViewDay ViewMode = iota
	ViewWeek
	ViewMonth
)

func (m ViewMode) String() string {
	switch m {
	case ViewDay:
		return "day"
	case ViewWeek:
		return "week"
	case ViewMonth:
		return "month"
	default:
		return "unknown"
	}
}

// ParseViewMode converts "day", "week" or "month" into a ViewMode.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return ViewDay, nil
	case "week", "":
		return ViewWeek, nil
	case "month":
		return ViewMonth, nil
	default:
		return ViewWeek, fmt.Errorf("unknown view mode %q", s)
	}
}

// Direction moves a view backwards or forwards.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// ViewState is owned by the caller: the mode being displayed and the instant
// the view is anchored on.
type ViewState struct {
	Mode   ViewMode
	Anchor time.Time
}

// Advance moves the anchor by one unit of the view mode. Month steps keep the
// day of month when possible and clamp it otherwise (Jan 31 -> Feb 28/29).
// The wall clock time and location of the anchor are preserved.
func Advance(v ViewState, dir Direction) ViewState {
	step := int(dir)
	if step == 0 {
		return v
	}
	switch v.Mode {
	case ViewDay:
		v.Anchor = v.Anchor.AddDate(0, 0, step)
	case ViewWeek:
		v.Anchor = v.Anchor.AddDate(0, 0, 7*step)
	case ViewMonth:
		v.Anchor = addMonthsClamped(v.Anchor, step)
	}
	return v
}

func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	ty, tm := first.Year(), first.Month()
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(ty, tm, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// ParseWeekStart accepts "monday" or "sunday".
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "":
		return time.Monday, nil
	case "sunday":
		return time.Sunday, nil
	default:
		return time.Monday, fmt.Errorf("unsupported week start %q", s)
	}
}

// Navigator computes the dates covered by a view. Views are laid out in
// Location using WeekStart as the first column of week and month grids.
type Navigator struct {
	WeekStart time.Weekday
	Location  *time.Location
}

// NewNavigator returns a Navigator; a nil location defaults to UTC.
func NewNavigator(weekStart time.Weekday, loc *time.Location) Navigator {
	if loc == nil {
		loc = time.UTC
	}
	return Navigator{WeekStart: weekStart, Location: loc}
}

func (n Navigator) loc() *time.Location {
	if n.Location == nil {
		return time.UTC
	}
	return n.Location
}

// StartOfDay returns local midnight of the day containing t.
func (n Navigator) StartOfDay(t time.Time) time.Time {
	return DateOf(t.In(n.loc())).In(n.loc())
}

// StartOfWeek returns local midnight of the first day of the week holding t.
func (n Navigator) StartOfWeek(t time.Time) time.Time {
	day := n.StartOfDay(t)
	back := (int(day.Weekday()) - int(n.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// VisibleRange returns the half-open interval [start, end) displayed by v.
// Month views cover whole weeks so the grid starts on WeekStart and may show
// trailing days of the previous and leading days of the next month.
func (n Navigator) VisibleRange(v ViewState) (time.Time, time.Time) {
	switch v.Mode {
	case ViewDay:
		start := n.StartOfDay(v.Anchor)
		return start, start.AddDate(0, 0, 1)
	case ViewMonth:
		a := v.Anchor.In(n.loc())
		first := time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, n.loc())
		last := first.AddDate(0, 1, -1)
		start := n.StartOfWeek(first)
		end := n.StartOfWeek(last).AddDate(0, 0, 7)
		return start, end
	default:
		start := n.StartOfWeek(v.Anchor)
		return start, start.AddDate(0, 0, 7)
	}
}

// Days lists every date inside the visible range of v.
func (n Navigator) Days(v ViewState) []Date {
	start, end := n.VisibleRange(v)
	var out []Date
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, DateOf(d))
	}
	return out
}

// Today re-anchors v on now while keeping its mode.
func (n Navigator) Today(v ViewState, now time.Time) ViewState {
	v.Anchor = now.In(n.loc())
	return v
}
