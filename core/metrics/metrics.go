package metrics

import (
	"time"

	"github.com/kilianp07/siteplan/core/model"
)

// Outcome labels the result of a mutation.
type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeNotFound        Outcome = "not_found"
	OutcomeInvalidInterval Outcome = "invalid_interval"
	OutcomeError           Outcome = "error"
)

// MutationEvent describes one call to the mutation coordinator.
type MutationEvent struct {
	Op      string
	Outcome Outcome
	// Events is the size of the event set after the call.
	Events int
	// DetectDuration is the time spent refreshing the conflict report.
	DetectDuration time.Duration
	Time           time.Time
}

// ScheduleSink records scheduler activity for observability purposes.
type ScheduleSink interface {
	RecordMutation(ev MutationEvent) error
	RecordConflicts(groups []model.ConflictGroup) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordMutation(MutationEvent) error          { return nil }
func (NopSink) RecordConflicts([]model.ConflictGroup) error { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []ScheduleSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...ScheduleSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMutation forwards the event to all sinks, returning the first error.
// Every sink is called even if an earlier one fails.
func (m *MultiSink) RecordMutation(ev MutationEvent) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordMutation(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordConflicts forwards the report to all sinks, returning the first error.
func (m *MultiSink) RecordConflicts(groups []model.ConflictGroup) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordConflicts(groups); err != nil && first == nil {
			first = err
		}
	}
	return first
}
