package conflict

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/siteplan/core/model"
)

var base = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func workerEvent(id, worker string, from, to int) model.Event {
	return model.Event{
		ID:     id,
		Start:  base.Add(time.Duration(from) * time.Hour),
		End:    base.Add(time.Duration(to) * time.Hour),
		Worker: mo.Some(worker),
	}
}

func idSets(groups []model.ConflictGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key()
	}
	sort.Strings(out)
	return out
}

func TestDetectTransitiveClustering(t *testing.T) {
	a := workerEvent("A", "w", 0, 10)
	b := workerEvent("B", "w", 5, 15)
	c := workerEvent("C", "w", 20, 30)
	groups := Detect([]model.Event{a, b, c})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"A", "B"}, groups[0].EventIDs())
}

func TestDetectChainedOverlapIsOneGroup(t *testing.T) {
	a := workerEvent("A", "w", 0, 10)
	b := workerEvent("B", "w", 8, 20)
	c := workerEvent("C", "w", 18, 30)
	groups := Detect([]model.Event{c, a, b})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"A", "B", "C"}, groups[0].EventIDs())
	assert.False(t, Overlaps(a, c))
}

func TestDetectLongEventCoversLaterOnes(t *testing.T) {
	long := workerEvent("L", "w", 0, 100)
	short := workerEvent("S", "w", 10, 20)
	late := workerEvent("T", "w", 50, 60)
	groups := Detect([]model.Event{long, short, late})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"L", "S", "T"}, groups[0].EventIDs())
}

func TestDetectTouchingIsNotConflict(t *testing.T) {
	groups := Detect([]model.Event{
		workerEvent("A", "w", 0, 10),
		workerEvent("B", "w", 10, 20),
	})
	assert.Empty(t, groups)
}

func TestDetectIdenticalIntervals(t *testing.T) {
	groups := Detect([]model.Event{
		workerEvent("A", "w", 8, 9),
		workerEvent("B", "w", 8, 9),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, model.SeverityHigh, groups[0].Severity)
}

func TestDetectSeparatesResources(t *testing.T) {
	groups := Detect([]model.Event{
		workerEvent("A", "w1", 0, 10),
		workerEvent("B", "w2", 0, 10),
	})
	assert.Empty(t, groups)
}

func TestDetectJobSiteOnlyNeverConflicts(t *testing.T) {
	var events []model.Event
	for i := 0; i < 5; i++ {
		events = append(events, model.Event{
			ID:      fmt.Sprintf("s%d", i),
			Start:   base,
			End:     base.Add(4 * time.Hour),
			JobSite: mo.Some("site-1"),
		})
	}
	assert.Empty(t, Detect(events))
}

func TestDetectEquipmentSeverity(t *testing.T) {
	a := model.Event{ID: "A", Start: base, End: base.Add(2 * time.Hour), Equipment: mo.Some("crane")}
	b := model.Event{ID: "B", Start: base.Add(time.Hour), End: base.Add(3 * time.Hour), Equipment: mo.Some("crane")}
	groups := Detect([]model.Event{a, b})
	require.Len(t, groups, 1)
	assert.Equal(t, model.ResourceEquipment, groups[0].ResourceKind)
	assert.Equal(t, "crane", groups[0].ResourceRef)
	assert.Equal(t, model.SeverityMedium, groups[0].Severity)
}

func TestDetectEventInWorkerAndEquipmentGroups(t *testing.T) {
	a := model.Event{ID: "A", Start: base, End: base.Add(2 * time.Hour), Worker: mo.Some("w"), Equipment: mo.Some("x")}
	b := model.Event{ID: "B", Start: base.Add(time.Hour), End: base.Add(3 * time.Hour), Worker: mo.Some("w")}
	c := model.Event{ID: "C", Start: base.Add(time.Hour), End: base.Add(3 * time.Hour), Equipment: mo.Some("x")}
	groups := Detect([]model.Event{a, b, c})
	require.Len(t, groups, 2)
	assert.Equal(t, model.ResourceWorker, groups[0].ResourceKind)
	assert.Equal(t, model.ResourceEquipment, groups[1].ResourceKind)
}

func TestDetectEmptyRefIsAKey(t *testing.T) {
	a := model.Event{ID: "A", Start: base, End: base.Add(2 * time.Hour), Worker: mo.Some("")}
	b := model.Event{ID: "B", Start: base, End: base.Add(2 * time.Hour), Worker: mo.Some("")}
	c := model.Event{ID: "C", Start: base, End: base.Add(2 * time.Hour)}
	groups := Detect([]model.Event{a, b, c})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"A", "B"}, groups[0].EventIDs())
}

func TestDetectDoesNotMutateInput(t *testing.T) {
	events := []model.Event{
		workerEvent("C", "w", 5, 6),
		workerEvent("A", "w", 0, 10),
		workerEvent("B", "w", 1, 2),
	}
	_ = Detect(events)
	assert.Equal(t, "C", events[0].ID)
	assert.Equal(t, "A", events[1].ID)
	assert.Equal(t, "B", events[2].ID)
}

func TestDetectRoundTripScenario(t *testing.T) {
	w1 := model.Event{ID: "W1", Start: base.Add(9 * time.Hour), End: base.Add(12 * time.Hour), Worker: mo.Some("W")}
	w2 := model.Event{ID: "W2", Start: base.Add(11 * time.Hour), End: base.Add(13 * time.Hour), Worker: mo.Some("W")}
	groups := Detect([]model.Event{w1, w2})
	require.Len(t, groups, 1)
	assert.Equal(t, model.ResourceWorker, groups[0].ResourceKind)
	assert.Equal(t, model.SeverityHigh, groups[0].Severity)
	assert.Equal(t, []string{"W1", "W2"}, groups[0].EventIDs())
	assert.Empty(t, Detect([]model.Event{w1}))
}

func randomEvents(r *rand.Rand, n int) []model.Event {
	workers := []string{"w1", "w2", "w3"}
	equipment := []string{"crane", "digger"}
	events := make([]model.Event, n)
	for i := range events {
		from := r.Intn(200)
		e := model.Event{
			ID:    fmt.Sprintf("e%03d", i),
			Start: base.Add(time.Duration(from) * time.Hour),
			End:   base.Add(time.Duration(from+1+r.Intn(12)) * time.Hour),
		}
		if r.Intn(3) > 0 {
			e.Worker = mo.Some(workers[r.Intn(len(workers))])
		}
		if r.Intn(2) == 0 {
			e.Equipment = mo.Some(equipment[r.Intn(len(equipment))])
		}
		if r.Intn(2) == 0 {
			e.JobSite = mo.Some("site")
		}
		events[i] = e
	}
	return events
}

func TestDetectOrderIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	events := randomEvents(r, 120)
	want := idSets(Detect(events))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.Event(nil), events...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, idSets(Detect(shuffled)))
	}
}

func TestDetectMatchesPairwise(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 25; round++ {
		events := randomEvents(r, 10+r.Intn(80))
		assert.Equal(t, idSets(detectPairwise(events)), idSets(Detect(events)), "round %d", round)
	}
}

func TestDetectGroupsAreOverlapClosed(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	events := randomEvents(r, 150)
	for _, g := range Detect(events) {
		require.GreaterOrEqual(t, len(g.Events), 2)
		for _, e := range g.Events {
			linked := false
			for _, o := range g.Events {
				if o.ID != e.ID && Overlaps(e, o) {
					linked = true
					break
				}
			}
			assert.True(t, linked, "event %s in group without overlapping peer", e.ID)
		}
	}
}
