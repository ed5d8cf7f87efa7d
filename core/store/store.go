// Package store defines persistence for the event set. The scheduler itself
// works in memory; the service loads the set from an EventStore on start and
// writes every applied change back to it.
package store

import (
	"context"

	"github.com/kilianp07/siteplan/core/factory"
	"github.com/kilianp07/siteplan/core/model"
)

// EventStore persists events by id.
type EventStore interface {
	// Load returns every stored event ordered by start then id.
	Load(ctx context.Context) ([]model.Event, error)
	// Put inserts or replaces events.
	Put(ctx context.Context, events ...model.Event) error
	// Delete removes events. Unknown ids are ignored.
	Delete(ctx context.Context, ids ...string) error
	Close() error
}

var registry = factory.NewRegistry[EventStore]("event store")

func init() {
	_ = Register("memory", func(map[string]any) (EventStore, error) {
		return NewMemoryStore(), nil
	})
}

// Register adds an EventStore factory identified by name.
func Register(name string, f factory.Factory[EventStore]) error {
	return registry.Register(name, f)
}

// New creates the EventStore selected by cfg. An empty type selects the
// memory store.
func New(cfg factory.ModuleConfig) (EventStore, error) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	return registry.Create(cfg)
}

// Types lists the registered backends.
func Types() []string { return registry.Types() }
