package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Kind classifies an event for display grouping. It is never consulted by
// conflict detection.
type Kind int

const (
	KindJobSiteWork Kind = iota
	KindMaintenance
	KindLeave
	KindTraining
)

// String returns a human-readable representation of the event kind.
func (k Kind) String() string {
	switch k {
	case KindJobSiteWork:
		return "job_site_work"
	case KindMaintenance:
		return "maintenance"
	case KindLeave:
		return "leave"
	case KindTraining:
		return "training"
	default:
		return "unknown"
	}
}

// Color returns the default display colour used by calendar renderers.
func (k Kind) Color() string {
	switch k {
	case KindJobSiteWork:
		return "#2563eb"
	case KindMaintenance:
		return "#d97706"
	case KindLeave:
		return "#16a34a"
	case KindTraining:
		return "#9333ea"
	default:
		return "#6b7280"
	}
}

// ParseKind converts the textual form produced by String back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "job_site_work", "jobsitework", "":
		return KindJobSiteWork, nil
	case "maintenance":
		return KindMaintenance, nil
	case "leave":
		return KindLeave, nil
	case "training":
		return KindTraining, nil
	default:
		return KindJobSiteWork, fmt.Errorf("unknown event kind %q", s)
	}
}

// Event is a scheduled occurrence on the planning calendar.
//
// JobSite, Worker and Equipment are weak references to entities owned by the
// surrounding application. They are only used as grouping keys.
type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Kind        Kind

	JobSite   mo.Option[string]
	Worker    mo.Option[string]
	Equipment mo.Option[string]
}

// Validate checks that the event spans a positive interval.
func (e Event) Validate() error {
	if !e.Start.Before(e.End) {
		return fmt.Errorf("%w: event %q start %s is not before end %s",
			ErrInvalidInterval, e.ID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
	}
	return nil
}

// Validate is the package level form of Event.Validate.
func Validate(e Event) error { return e.Validate() }

// Duration returns End - Start.
func (e Event) Duration() time.Duration { return e.End.Sub(e.Start) }

// Overlaps reports whether both intervals share at least one instant.
// Touching intervals (a.End == b.Start) do not overlap.
func (e Event) Overlaps(other Event) bool {
	return e.Start.Before(other.End) && other.Start.Before(e.End)
}

// Ref returns the reference held for the given resource kind.
func (e Event) Ref(kind ResourceKind) mo.Option[string] {
	switch kind {
	case ResourceWorker:
		return e.Worker
	case ResourceEquipment:
		return e.Equipment
	case ResourceJobSite:
		return e.JobSite
	default:
		return mo.None[string]()
	}
}

// Shift returns a copy of the event moved by d, keeping its duration.
func (e Event) Shift(d time.Duration) Event {
	e.Start = e.Start.Add(d)
	e.End = e.End.Add(d)
	return e
}
