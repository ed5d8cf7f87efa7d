package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kilianp07/siteplan/core/model"
)

// MemoryStore keeps events in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]model.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]model.Event{}}
}

func (s *MemoryStore) Load(context.Context) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Event, 0, len(s.data))
	for _, e := range s.data {
		res = append(res, e)
	}
	SortEvents(res)
	return res, nil
}

func (s *MemoryStore) Put(_ context.Context, events ...model.Event) error {
	s.mu.Lock()
	for _, e := range events {
		s.data[e.ID] = e
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, ids ...string) error {
	s.mu.Lock()
	for _, id := range ids {
		delete(s.data, id)
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// SortEvents orders events by start time, breaking ties by id.
func SortEvents(events []model.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
}
