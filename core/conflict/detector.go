package conflict

import (
	"sort"

	"github.com/kilianp07/siteplan/core/model"
)

// Overlaps reports whether a and b share at least one instant. The test is
// strict on both sides and therefore symmetric.
func Overlaps(a, b model.Event) bool {
	return a.Overlaps(b)
}

// Detect returns every conflict group found in events.
//
// Events are partitioned per conflicting resource kind and reference, sorted
// by start (ties broken by id) and swept once. Events with no reference for a
// kind do not take part in that kind's grouping. The input slice is left
// untouched and the output order only depends on the set of events.
func Detect(events []model.Event) []model.ConflictGroup {
	var groups []model.ConflictGroup
	for _, kind := range model.ConflictingResources {
		byRef := partition(events, kind)
		refs := make([]string, 0, len(byRef))
		for ref := range byRef {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			bucket := byRef[ref]
			if len(bucket) < 2 {
				continue
			}
			for _, cluster := range sweep(bucket) {
				groups = append(groups, model.ConflictGroup{
					ResourceKind: kind,
					ResourceRef:  ref,
					Events:       cluster,
					Severity:     model.SeverityFor(kind),
				})
			}
		}
	}
	return groups
}

func partition(events []model.Event, kind model.ResourceKind) map[string][]model.Event {
	out := make(map[string][]model.Event)
	for _, e := range events {
		ref, ok := e.Ref(kind).Get()
		if !ok {
			continue
		}
		out[ref] = append(out[ref], e)
	}
	return out
}

// sweep sorts bucket in place and returns the clusters holding two or more
// chain-overlapping events. The running maximum end keeps an early long event
// open for every later event it covers.
func sweep(bucket []model.Event) [][]model.Event {
	sortEvents(bucket)
	var (
		clusters [][]model.Event
		open     = []model.Event{bucket[0]}
		maxEnd   = bucket[0].End
	)
	for _, e := range bucket[1:] {
		if e.Start.Before(maxEnd) {
			open = append(open, e)
			if e.End.After(maxEnd) {
				maxEnd = e.End
			}
			continue
		}
		if len(open) > 1 {
			clusters = append(clusters, open)
		}
		open = []model.Event{e}
		maxEnd = e.End
	}
	if len(open) > 1 {
		clusters = append(clusters, open)
	}
	return clusters
}

func sortEvents(events []model.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
}
