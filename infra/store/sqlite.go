// Package store provides database backed implementations of store.EventStore.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/mo"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/siteplan/core/factory"
	"github.com/kilianp07/siteplan/core/model"
	corestore "github.com/kilianp07/siteplan/core/store"
)

// SQLiteConfig configures the sqlite backend.
type SQLiteConfig struct {
	Path string `json:"path"`
}

func init() {
	_ = corestore.Register("sqlite", func(conf map[string]any) (corestore.EventStore, error) {
		var cfg SQLiteConfig
		if err := factory.Decode(conf, &cfg); err != nil {
			return nil, err
		}
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store: path required")
		}
		return NewSQLiteStore(cfg.Path)
	})
}

// ErrTimeOutOfRange is returned by Put for times that do not fit in unix
// nanoseconds.
var ErrTimeOutOfRange = errors.New("time outside the storable range")

var (
	minStorable = time.Unix(0, math.MinInt64)
	maxStorable = time.Unix(0, math.MaxInt64)
)

// SQLiteStore persists events in a SQLite database. Times are stored as unix
// nanoseconds, which covers the years 1678 to 2262, and are loaded back in
// UTC. Absent resource references are stored as NULL.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	schema := `CREATE TABLE IF NOT EXISTS events (
        id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        description TEXT NOT NULL,
        start_ns INTEGER NOT NULL,
        end_ns INTEGER NOT NULL,
        kind TEXT NOT NULL,
        job_site TEXT,
        worker TEXT,
        equipment TEXT
    );`
	index := `CREATE INDEX IF NOT EXISTS events_start ON events (start_ns);`
	for _, stmt := range []string{schema, index} {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns every event ordered by start then id.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, start_ns, end_ns, kind, job_site, worker, equipment
        FROM events ORDER BY start_ns, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.Event
	for rows.Next() {
		var (
			e                         model.Event
			startNS, endNS            int64
			kind                      string
			jobSite, worker, equipmnt sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &startNS, &endNS, &kind, &jobSite, &worker, &equipmnt); err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		if e.Kind, err = model.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("sqlite store: event %s: %w", e.ID, err)
		}
		e.Start = time.Unix(0, startNS).UTC()
		e.End = time.Unix(0, endNS).UTC()
		e.JobSite = fromNull(jobSite)
		e.Worker = fromNull(worker)
		e.Equipment = fromNull(equipmnt)
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	return res, nil
}

// Put inserts or replaces events in a single transaction.
func (s *SQLiteStore) Put(ctx context.Context, events ...model.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite store: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO events
        (id, title, description, start_ns, end_ns, kind, job_site, worker, equipment)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite store: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, e := range events {
		startNS, err := unixNanos(e.Start)
		if err != nil {
			return fmt.Errorf("sqlite store: put %s: %w", e.ID, err)
		}
		endNS, err := unixNanos(e.End)
		if err != nil {
			return fmt.Errorf("sqlite store: put %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Title, e.Description,
			startNS, endNS, e.Kind.String(),
			toNull(e.JobSite), toNull(e.Worker), toNull(e.Equipment)); err != nil {
			return fmt.Errorf("sqlite store: put %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite store: %w", err)
	}
	return nil
}

// Delete removes the given ids. Unknown ids are ignored.
func (s *SQLiteStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `DELETE FROM events WHERE id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite store: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func unixNanos(t time.Time) (int64, error) {
	if t.Before(minStorable) || t.After(maxStorable) {
		return 0, fmt.Errorf("%w: %s", ErrTimeOutOfRange, t.Format(time.RFC3339))
	}
	return t.UnixNano(), nil
}

func fromNull(v sql.NullString) mo.Option[string] {
	if !v.Valid {
		return mo.None[string]()
	}
	return mo.Some(v.String)
}

func toNull(o mo.Option[string]) sql.NullString {
	v, ok := o.Get()
	return sql.NullString{String: v, Valid: ok}
}
