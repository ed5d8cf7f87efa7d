package journal

import (
	"context"
	"fmt"
	"time"
)

// Record captures one coordinator call and its outcome.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Op        string    `json:"op"`
	EventIDs  []string  `json:"event_ids"`
	// Conflicts is the number of conflict groups after the call.
	Conflicts int    `json:"conflicts"`
	Err       string `json:"error,omitempty"`
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start   time.Time
	End     time.Time
	EventID string
	Op      string
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Config selects the journal backend.
type Config struct {
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults fills rotation defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 28
	}
}

// Validate checks the backend name and that a path is given when needed.
func (c Config) Validate() error {
	switch c.Backend {
	case "none", "":
		return nil
	case "jsonl", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("journal: path required for %s backend", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("journal: unknown backend %q", c.Backend)
	}
}

// Open returns the store selected by cfg, or nil for the "none" backend.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "jsonl":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("journal: unknown backend %q", cfg.Backend)
	}
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Op != "" && r.Op != q.Op {
		return false
	}
	if q.EventID != "" {
		for _, id := range r.EventIDs {
			if id == q.EventID {
				return true
			}
		}
		return false
	}
	return true
}
