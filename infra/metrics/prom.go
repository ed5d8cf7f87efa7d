package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/siteplan/core/metrics"
	"github.com/kilianp07/siteplan/core/model"
)

// PromSink records scheduler activity in Prometheus metrics.
type PromSink struct {
	mutations *prometheus.CounterVec
	conflicts *prometheus.GaugeVec
	events    prometheus.Gauge
	detect    prometheus.Histogram
}

// NewPromSink registers scheduler metrics on the default Prometheus registerer.
// The /metrics endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_mutations_total",
		Help: "Total number of schedule mutations by operation and outcome",
	}, []string{"op", "outcome"})
	conflicts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_conflict_groups",
		Help: "Number of conflict groups in the current report",
	}, []string{"resource_kind", "severity"})
	events := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_events",
		Help: "Number of events in the canonical event set",
	})
	detect := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_detect_duration_seconds",
		Help:    "Time spent recomputing the conflict report after a mutation",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	var err error
	if mutations, err = register(reg, mutations); err != nil {
		return nil, err
	}
	if conflicts, err = register(reg, conflicts); err != nil {
		return nil, err
	}
	if events, err = register(reg, events); err != nil {
		return nil, err
	}
	if detect, err = register(reg, detect); err != nil {
		return nil, err
	}
	return &PromSink{mutations: mutations, conflicts: conflicts, events: events, detect: detect}, nil
}

// register returns the already registered collector when one exists so that
// several sinks can share the default registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordMutation counts the mutation and updates the event gauge.
func (s *PromSink) RecordMutation(ev coremetrics.MutationEvent) error {
	s.mutations.WithLabelValues(ev.Op, string(ev.Outcome)).Inc()
	if ev.Outcome == coremetrics.OutcomeOK {
		s.events.Set(float64(ev.Events))
		s.detect.Observe(ev.DetectDuration.Seconds())
	}
	return nil
}

// RecordConflicts replaces the conflict gauges with the counts of the report.
func (s *PromSink) RecordConflicts(groups []model.ConflictGroup) error {
	s.conflicts.Reset()
	for _, kind := range model.ConflictingResources {
		sev := model.SeverityFor(kind)
		s.conflicts.WithLabelValues(kind.String(), sev.String()).Set(0)
	}
	for _, g := range groups {
		s.conflicts.WithLabelValues(g.ResourceKind.String(), g.Severity.String()).Inc()
	}
	return nil
}
