package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/kilianp07/siteplan/core/conflict"
	"github.com/kilianp07/siteplan/core/logger"
	"github.com/kilianp07/siteplan/core/metrics"
	"github.com/kilianp07/siteplan/core/model"
	"github.com/kilianp07/siteplan/core/scheduler/journal"
	"github.com/kilianp07/siteplan/internal/eventbus"
)

// IDGenerator returns a fresh event id.
type IDGenerator func() string

// NewUUID generates random UUIDs and is the default IDGenerator.
func NewUUID() string { return uuid.NewString() }

// Coordinator owns the canonical event set and the conflict report derived
// from it.
type Coordinator struct {
	cfg       Config
	events    []model.Event
	conflicts []model.ConflictGroup
	last      mo.Option[Change]

	logger  logger.Logger
	metrics metrics.ScheduleSink
	bus     *eventbus.Bus[Change]
	journal journal.Store
	newID   IDGenerator
	now     func() time.Time
}

// NewCoordinator creates an empty Coordinator. A nil logger discards output.
func NewCoordinator(cfg Config, log logger.Logger) *Coordinator {
	cfg.SetDefaults()
	return &Coordinator{
		cfg:     cfg,
		logger:  logger.OrNop(log),
		metrics: metrics.NopSink{},
		newID:   NewUUID,
		now:     time.Now,
	}
}

// SetMetrics configures the sink receiving mutation and conflict metrics.
func (c *Coordinator) SetMetrics(sink metrics.ScheduleSink) {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	c.metrics = sink
}

// SetBus configures the bus on which applied changes are published.
func (c *Coordinator) SetBus(bus *eventbus.Bus[Change]) { c.bus = bus }

// SetJournal configures the store recording every call.
func (c *Coordinator) SetJournal(store journal.Store) { c.journal = store }

// SetIDGenerator replaces the generator used by Create and Duplicate.
func (c *Coordinator) SetIDGenerator(gen IDGenerator) {
	if gen == nil {
		gen = NewUUID
	}
	c.newID = gen
}

// SetClock replaces the time source used for change and journal timestamps.
func (c *Coordinator) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	c.now = now
}

// Snapshot returns a copy of the current event set and report.
func (c *Coordinator) Snapshot() Snapshot {
	groups := make([]model.ConflictGroup, len(c.conflicts))
	for i, g := range c.conflicts {
		g.Events = append([]model.Event(nil), g.Events...)
		groups[i] = g
	}
	return Snapshot{
		Events:    append([]model.Event(nil), c.events...),
		Conflicts: groups,
	}
}

// Get returns the event with the given id.
func (c *Coordinator) Get(id string) (model.Event, error) {
	i := c.indexOf(id)
	if i < 0 {
		return model.Event{}, model.NotFound(id)
	}
	return c.events[i], nil
}

// LastChange returns the change applied by the most recent successful call.
func (c *Coordinator) LastChange() (Change, bool) {
	return c.last.Get()
}

// Load replaces the whole event set. Events without an id get a generated
// one. Every event must be valid and ids must be unique; otherwise the
// current set is kept.
func (c *Coordinator) Load(events []model.Event) (Snapshot, error) {
	events = append([]model.Event(nil), events...)
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = c.newID()
		}
	}
	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return c.fail(OpLoad, []string{e.ID}, err)
		}
		if _, dup := seen[e.ID]; dup {
			return c.fail(OpLoad, []string{e.ID}, fmt.Errorf("%w: %s", model.ErrDuplicateID, e.ID))
		}
		seen[e.ID] = struct{}{}
		ids = append(ids, e.ID)
	}
	c.events = events
	return c.commit(OpLoad, ids), nil
}

// Create adds ev to the set. An empty id is replaced by a generated one; an
// id already in use fails with model.ErrDuplicateID.
func (c *Coordinator) Create(ev model.Event) (Snapshot, error) {
	if ev.ID == "" {
		ev.ID = c.newID()
	}
	if err := ev.Validate(); err != nil {
		return c.fail(OpCreate, []string{ev.ID}, err)
	}
	if c.indexOf(ev.ID) >= 0 {
		return c.fail(OpCreate, []string{ev.ID}, fmt.Errorf("%w: %s", model.ErrDuplicateID, ev.ID))
	}
	c.events = append(c.events, ev)
	return c.commit(OpCreate, []string{ev.ID}), nil
}

// Update replaces the event sharing ev's id.
func (c *Coordinator) Update(ev model.Event) (Snapshot, error) {
	i := c.indexOf(ev.ID)
	if i < 0 {
		return c.fail(OpUpdate, []string{ev.ID}, model.NotFound(ev.ID))
	}
	if err := ev.Validate(); err != nil {
		return c.fail(OpUpdate, []string{ev.ID}, err)
	}
	c.events[i] = ev
	return c.commit(OpUpdate, []string{ev.ID}), nil
}

// Delete removes the event with the given id.
func (c *Coordinator) Delete(id string) (Snapshot, error) {
	i := c.indexOf(id)
	if i < 0 {
		return c.fail(OpDelete, []string{id}, model.NotFound(id))
	}
	c.events = append(c.events[:i:i], c.events[i+1:]...)
	return c.commit(OpDelete, []string{id}), nil
}

// Duplicate copies the event under a fresh id and marks its title with the
// configured suffix.
func (c *Coordinator) Duplicate(id string) (Snapshot, error) {
	i := c.indexOf(id)
	if i < 0 {
		return c.fail(OpDuplicate, []string{id}, model.NotFound(id))
	}
	cp := c.events[i]
	cp.ID = c.newID()
	if c.indexOf(cp.ID) >= 0 {
		return c.fail(OpDuplicate, []string{cp.ID}, fmt.Errorf("%w: %s", model.ErrDuplicateID, cp.ID))
	}
	cp.Title += c.cfg.DuplicateSuffix
	c.events = append(c.events, cp)
	return c.commit(OpDuplicate, []string{cp.ID}), nil
}

// Reschedule moves the event so it starts at newStart. The duration is kept.
func (c *Coordinator) Reschedule(id string, newStart time.Time) (Snapshot, error) {
	i := c.indexOf(id)
	if i < 0 {
		return c.fail(OpReschedule, []string{id}, model.NotFound(id))
	}
	moved := c.events[i].Shift(newStart.Sub(c.events[i].Start))
	if err := moved.Validate(); err != nil {
		return c.fail(OpReschedule, []string{id}, err)
	}
	c.events[i] = moved
	return c.commit(OpReschedule, []string{id}), nil
}

// BulkDelete removes every listed event. Unknown ids are ignored.
func (c *Coordinator) BulkDelete(ids []string) (Snapshot, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := c.events[:0:0]
	var removed []string
	for _, e := range c.events {
		if _, ok := drop[e.ID]; ok {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	c.events = kept
	return c.commit(OpBulkDelete, removed), nil
}

func (c *Coordinator) indexOf(id string) int {
	for i := range c.events {
		if c.events[i].ID == id {
			return i
		}
	}
	return -1
}

// commit refreshes the report after an applied mutation and notifies the
// side channels.
func (c *Coordinator) commit(op Op, ids []string) Snapshot {
	start := time.Now()
	c.conflicts = conflict.Detect(c.events)
	took := time.Since(start)

	now := c.now()
	c.logger.Debugw("schedule mutation applied", map[string]any{
		"op":        string(op),
		"events":    ids,
		"conflicts": len(c.conflicts),
	})
	if err := c.metrics.RecordMutation(metrics.MutationEvent{
		Op:             string(op),
		Outcome:        metrics.OutcomeOK,
		Events:         len(c.events),
		DetectDuration: took,
		Time:           now,
	}); err != nil {
		c.logger.Warnf("record mutation metrics: %v", err)
	}
	if err := c.metrics.RecordConflicts(c.conflicts); err != nil {
		c.logger.Warnf("record conflict metrics: %v", err)
	}
	c.record(journal.Record{Timestamp: now, Op: string(op), EventIDs: ids, Conflicts: len(c.conflicts)})
	change := Change{
		Op:        op,
		EventIDs:  append([]string(nil), ids...),
		Conflicts: append([]model.ConflictGroup(nil), c.conflicts...),
		Time:      now,
	}
	c.last = mo.Some(change)
	if c.bus != nil {
		c.bus.Publish(change)
	}
	return c.Snapshot()
}

// fail reports a rejected call. The returned snapshot is the unchanged state.
func (c *Coordinator) fail(op Op, ids []string, err error) (Snapshot, error) {
	now := c.now()
	c.logger.Infof("schedule %s rejected: %v", op, err)
	if merr := c.metrics.RecordMutation(metrics.MutationEvent{
		Op:      string(op),
		Outcome: outcomeOf(err),
		Events:  len(c.events),
		Time:    now,
	}); merr != nil {
		c.logger.Warnf("record mutation metrics: %v", merr)
	}
	c.record(journal.Record{Timestamp: now, Op: string(op), EventIDs: ids, Conflicts: len(c.conflicts), Err: err.Error()})
	return c.Snapshot(), err
}

func (c *Coordinator) record(rec journal.Record) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Append(context.Background(), rec); err != nil {
		c.logger.Errorf("append journal record: %v", err)
	}
}

func outcomeOf(err error) metrics.Outcome {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, model.ErrInvalidInterval):
		return metrics.OutcomeInvalidInterval
	default:
		return metrics.OutcomeError
	}
}
