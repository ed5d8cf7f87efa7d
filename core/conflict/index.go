package conflict

import "github.com/kilianp07/siteplan/core/model"

// Index answers membership questions about a conflict report. Calendar views
// consume an Index instead of detecting conflicts themselves.
type Index struct {
	groups []model.ConflictGroup
	byID   map[string][]int
}

// NewIndex builds an Index over groups. A nil or empty report yields an index
// in which no event is in conflict.
func NewIndex(groups []model.ConflictGroup) Index {
	idx := Index{groups: groups, byID: make(map[string][]int)}
	for i, g := range groups {
		for _, e := range g.Events {
			idx.byID[e.ID] = append(idx.byID[e.ID], i)
		}
	}
	return idx
}

// HasConflict reports whether the event belongs to any conflict group.
func (x Index) HasConflict(id string) bool {
	return len(x.byID[id]) > 0
}

// Severity returns the highest severity among the groups containing id.
// The boolean is false when the event is not in conflict.
func (x Index) Severity(id string) (model.Severity, bool) {
	pos := x.byID[id]
	if len(pos) == 0 {
		return model.SeverityLow, false
	}
	best := x.groups[pos[0]].Severity
	for _, p := range pos[1:] {
		if s := x.groups[p].Severity; s > best {
			best = s
		}
	}
	return best, true
}

// Groups returns the conflict groups the event belongs to.
func (x Index) Groups(id string) []model.ConflictGroup {
	pos := x.byID[id]
	out := make([]model.ConflictGroup, 0, len(pos))
	for _, p := range pos {
		out = append(out, x.groups[p])
	}
	return out
}

// Len returns the number of groups in the indexed report.
func (x Index) Len() int { return len(x.groups) }

// Summary aggregates a report for logs, metrics and the CLI.
type Summary struct {
	Groups         int
	EventsInvolved int
	ByKind         map[model.ResourceKind]int
	BySeverity     map[model.Severity]int
}

// Summarize counts groups per resource kind and severity. An event present in
// several groups is counted once in EventsInvolved.
func Summarize(groups []model.ConflictGroup) Summary {
	s := Summary{
		Groups:     len(groups),
		ByKind:     map[model.ResourceKind]int{},
		BySeverity: map[model.Severity]int{},
	}
	seen := map[string]struct{}{}
	for _, g := range groups {
		s.ByKind[g.ResourceKind]++
		s.BySeverity[g.Severity]++
		for _, e := range g.Events {
			seen[e.ID] = struct{}{}
		}
	}
	s.EventsInvolved = len(seen)
	return s
}
