package journal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecords() []Record {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []Record{
		{Timestamp: base, Op: "create", EventIDs: []string{"a"}, Conflicts: 0},
		{Timestamp: base.Add(time.Minute), Op: "reschedule", EventIDs: []string{"a"}, Conflicts: 1},
		{Timestamp: base.Add(2 * time.Minute), Op: "delete", EventIDs: []string{"b"}, Err: "event b: not found"},
	}
}

func exercise(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	for _, r := range sampleRecords() {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	all, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	byEvent, err := store.Query(ctx, Query{EventID: "a"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(byEvent) != 2 {
		t.Fatalf("expected 2 records for a, got %d", len(byEvent))
	}
	byOp, err := store.Query(ctx, Query{Op: "delete"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(byOp) != 1 || byOp[0].Err == "" {
		t.Fatalf("unexpected delete records: %+v", byOp)
	}
	base := sampleRecords()[0].Timestamp
	window, err := store.Query(ctx, Query{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(window) != 1 || window[0].Op != "reschedule" {
		t.Fatalf("unexpected window: %+v", window)
	}
}

func TestRotatingJSONLStore_Query(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "journal.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	exercise(t, store)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 5, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	ids := make([]string, 2000)
	for i := range ids {
		ids[i] = "event-with-a-long-identifier"
	}
	rec := Record{Timestamp: time.Now(), Op: "bulk_delete", EventIDs: ids}
	for i := 0; i < 40; i++ {
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	backups, _ := filepath.Glob(backupPattern(path))
	if len(backups) == 0 {
		t.Fatalf("expected rotated files")
	}
	out, err := store.Query(context.Background(), Query{Op: "bulk_delete"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 40 {
		t.Fatalf("expected records from all files, got %d", len(out))
	}
}

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	exercise(t, store)
}

func TestRecord_JSON(t *testing.T) {
	data, err := json.Marshal(sampleRecords()[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"timestamp", "op", "event_ids", "conflicts"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %s", k)
		}
	}
	if _, ok := m["error"]; ok {
		t.Errorf("error should be omitted when empty")
	}
}

func TestConfig(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c.Backend != "none" || c.MaxSizeMB != 10 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	c.Backend = "jsonl"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected missing path error")
	}
	c.Backend = "kafka"
	c.Path = "x"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	s, err := Open(Config{Backend: "none"})
	if err != nil || s != nil {
		t.Fatalf("expected nil store for none backend")
	}
}
