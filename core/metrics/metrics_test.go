package metrics

import (
	"errors"
	"testing"

	"github.com/kilianp07/siteplan/core/factory"
	"github.com/kilianp07/siteplan/core/model"
)

type recordSink struct {
	mutations int
	reports   int
	err       error
}

func (r *recordSink) RecordMutation(MutationEvent) error {
	r.mutations++
	return r.err
}

func (r *recordSink) RecordConflicts([]model.ConflictGroup) error {
	r.reports++
	return r.err
}

func TestMultiSinkForwardsToAll(t *testing.T) {
	failing := &recordSink{err: errors.New("boom")}
	ok := &recordSink{}
	m := NewMultiSink(failing, ok)
	if err := m.RecordMutation(MutationEvent{Op: "create"}); err == nil {
		t.Fatalf("expected error from failing sink")
	}
	if err := m.RecordConflicts(nil); err == nil {
		t.Fatalf("expected error from failing sink")
	}
	if ok.mutations != 1 || ok.reports != 1 {
		t.Fatalf("records not forwarded past failing sink: %+v", ok)
	}
}

func TestNewSink(t *testing.T) {
	s, err := NewSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
	s, err = NewSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	if m, ok := s.(*MultiSink); !ok || len(m.Sinks) != 2 {
		t.Fatalf("expected MultiSink with 2 sinks, got %T", s)
	}
	if _, err := NewSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestConfigHasSink(t *testing.T) {
	c := Config{Sinks: []factory.ModuleConfig{{Type: "prometheus"}}}
	if !c.HasSink("prometheus") || c.HasSink("nop") {
		t.Fatalf("unexpected HasSink result")
	}
}
