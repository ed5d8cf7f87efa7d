package model

import (
	"fmt"
	"sort"
	"strings"
)

// ResourceKind identifies which reference field of an Event is considered.
type ResourceKind int

const (
	ResourceWorker ResourceKind = iota
	ResourceEquipment
	ResourceJobSite
)

// ConflictingResources lists the resource kinds that cannot be double-booked.
// Job sites may host any number of simultaneous events.
var ConflictingResources = []ResourceKind{ResourceWorker, ResourceEquipment}

// String returns a human-readable representation of the resource kind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceWorker:
		return "worker"
	case ResourceEquipment:
		return "equipment"
	case ResourceJobSite:
		return "job_site"
	default:
		return "unknown"
	}
}

// Conflicting reports whether overlapping bookings of this kind are conflicts.
func (k ResourceKind) Conflicting() bool {
	return k == ResourceWorker || k == ResourceEquipment
}

// ParseResourceKind converts the output of String back into a ResourceKind.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "worker":
		return ResourceWorker, nil
	case "equipment":
		return ResourceEquipment, nil
	case "job_site", "jobsite":
		return ResourceJobSite, nil
	default:
		return ResourceWorker, fmt.Errorf("unknown resource kind %q", s)
	}
}

// Severity ranks conflict groups.
type Severity int

const (
	// SeverityLow is defined for completeness; detection never produces it.
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// SeverityFor returns the severity attached to conflicts on a resource kind.
// A worker cannot be in two places at once, equipment bookings leave more slack.
func SeverityFor(kind ResourceKind) Severity {
	switch kind {
	case ResourceWorker:
		return SeverityHigh
	case ResourceEquipment:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ConflictGroup is a maximal cluster of transitively overlapping events that
// share one resource reference. It always holds at least two events.
type ConflictGroup struct {
	ResourceKind ResourceKind
	ResourceRef  string
	Events       []Event
	Severity     Severity
}

// EventIDs returns the sorted ids of the events in the group.
func (g ConflictGroup) EventIDs() []string {
	ids := make([]string, len(g.Events))
	for i, e := range g.Events {
		ids[i] = e.ID
	}
	sort.Strings(ids)
	return ids
}

// Key identifies the group by resource and member ids.
func (g ConflictGroup) Key() string {
	return g.ResourceKind.String() + ":" + g.ResourceRef + ":" + strings.Join(g.EventIDs(), ",")
}
