package conflict

import (
	"sort"

	"github.com/kilianp07/siteplan/core/model"
)

// detectPairwise is the quadratic reference implementation: every pair of
// events sharing a reference is compared and overlapping pairs are merged
// with a union-find. It yields the same membership as Detect and is only
// used to cross-check the sweep.
func detectPairwise(events []model.Event) []model.ConflictGroup {
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
			sortEvents(bucket)
			parent := make([]int, len(bucket))
			for i := range parent {
				parent[i] = i
			}
			var find func(int) int
			find = func(i int) int {
				if parent[i] != i {
					parent[i] = find(parent[i])
				}
				return parent[i]
			}
			for i := range bucket {
				for j := i + 1; j < len(bucket); j++ {
					if Overlaps(bucket[i], bucket[j]) {
						parent[find(j)] = find(i)
					}
				}
			}
			clusters := map[int][]model.Event{}
			var roots []int
			for i, e := range bucket {
				r := find(i)
				if _, ok := clusters[r]; !ok {
					roots = append(roots, r)
				}
				clusters[r] = append(clusters[r], e)
			}
			for _, r := range roots {
				if len(clusters[r]) < 2 {
					continue
				}
				groups = append(groups, model.ConflictGroup{
					ResourceKind: kind,
					ResourceRef:  ref,
					Events:       clusters[r],
					Severity:     model.SeverityFor(kind),
				})
			}
		}
	}
	return groups
}
