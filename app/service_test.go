package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/siteplan/config"
	"github.com/kilianp07/siteplan/core/factory"
	"github.com/kilianp07/siteplan/core/model"
	"github.com/kilianp07/siteplan/core/scheduler/journal"
)

var day = time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store = factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": filepath.Join(dir, "events.db")}}
	cfg.Journal.Backend = "jsonl"
	cfg.Journal.Path = filepath.Join(dir, "journal.jsonl")
	require.NoError(t, cfg.Validate())
	return cfg
}

func worker(id string, startH, endH int) model.Event {
	return model.Event{ID: id, Title: id, Start: day.Add(time.Duration(startH) * time.Hour),
		End: day.Add(time.Duration(endH) * time.Hour), Worker: mo.Some("W")}
}

func TestServicePersistsMutations(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	svc, err := New(ctx, cfg)
	require.NoError(t, err)

	_, err = svc.Create(ctx, worker("W1", 9, 12))
	require.NoError(t, err)
	snap, err := svc.Create(ctx, worker("W2", 11, 13))
	require.NoError(t, err)
	require.Len(t, snap.Conflicts, 1)
	_, err = svc.Reschedule(ctx, "W2", day.Add(12*time.Hour))
	require.NoError(t, err)
	_, err = svc.Duplicate(ctx, "W1")
	require.NoError(t, err)
	_, err = svc.Delete(ctx, "W1")
	require.NoError(t, err)
	_, err = svc.Delete(ctx, "W1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, svc.Close())

	svc, err = New(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	snap = svc.Snapshot()
	require.Len(t, snap.Events, 2)
	w2, err := svc.Get("W2")
	require.NoError(t, err)
	assert.Equal(t, day.Add(14*time.Hour), w2.End)
	// The copy of W1 (09:00-12:00) overlaps W2 (12:00-14:00) only at the boundary.
	assert.Empty(t, snap.Conflicts)

	recs, err := svc.journal.Query(ctx, journal.Query{Op: "delete"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.NotEmpty(t, recs[1].Err)
}

func TestServiceImport(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	_, err = svc.Create(ctx, worker("A", 8, 9))
	require.NoError(t, err)
	renamed := worker("A", 8, 10)
	renamed.Title = "renamed"
	snap, err := svc.Import(ctx, []model.Event{renamed, worker("B", 9, 11)})
	require.NoError(t, err)
	require.Len(t, snap.Events, 2)
	require.Len(t, snap.Conflicts, 1)
	a, err := svc.Get("A")
	require.NoError(t, err)
	assert.Equal(t, "renamed", a.Title)

	_, err = svc.Import(ctx, []model.Event{worker("C", 1, 2), worker("C", 3, 4)})
	assert.ErrorIs(t, err, model.ErrDuplicateID)
	_, err = svc.Import(ctx, []model.Event{worker("D", 5, 4)})
	assert.ErrorIs(t, err, model.ErrInvalidInterval)
	assert.Len(t, svc.Snapshot().Events, 2)

	stored, err := svc.store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestServiceImportAssignsIDs(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	_, err = svc.Import(ctx, []model.Event{worker("", 9, 12)})
	require.NoError(t, err)
	_, err = svc.Import(ctx, []model.Event{worker("", 13, 14), worker("", 15, 16)})
	require.NoError(t, err)

	snap := svc.Snapshot()
	require.Len(t, snap.Events, 3)
	ids := map[string]struct{}{}
	for _, e := range snap.Events {
		require.NotEmpty(t, e.ID)
		ids[e.ID] = struct{}{}
	}
	assert.Len(t, ids, 3)
	_, err = svc.Get("")
	assert.ErrorIs(t, err, model.ErrNotFound)

	stored, err := svc.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, e := range stored {
		assert.Contains(t, ids, e.ID)
	}
}

func TestServiceHandler(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	changes := svc.Subscribe()

	h := svc.Handler()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/events",
		strings.NewReader(`{"id":"X","start":"2024-04-15T09:00:00Z","end":"2024-04-15T10:00:00Z","worker":"W"}`)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	select {
	case ch := <-changes:
		assert.Equal(t, []string{"X"}, ch.EventIDs)
	case <-time.After(time.Second):
		t.Fatal("expected change notification")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/journal?event_id=X", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []journal.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "create", recs[0].Op)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/calendar?mode=day&anchor=2024-04-15", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.Listen = "127.0.0.1:0"
	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestNewRejectsUnknownStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Type = "cassandra"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
