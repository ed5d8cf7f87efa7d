package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	apicalendar "github.com/kilianp07/siteplan/api/calendar"
	apijournal "github.com/kilianp07/siteplan/api/journal"
	"github.com/kilianp07/siteplan/config"
	"github.com/kilianp07/siteplan/core/calendar"
	coremetrics "github.com/kilianp07/siteplan/core/metrics"
	"github.com/kilianp07/siteplan/core/model"
	"github.com/kilianp07/siteplan/core/monitoring"
	"github.com/kilianp07/siteplan/core/scheduler"
	"github.com/kilianp07/siteplan/core/scheduler/journal"
	"github.com/kilianp07/siteplan/core/store"
	"github.com/kilianp07/siteplan/infra/logger"
	"github.com/kilianp07/siteplan/infra/metrics"
	inframon "github.com/kilianp07/siteplan/infra/monitoring"
	_ "github.com/kilianp07/siteplan/infra/store"
	"github.com/kilianp07/siteplan/internal/eventbus"
)

// Service wires the coordinator to persistence, the journal, metrics and the
// HTTP API. All coordinator calls go through one mutex.
type Service struct {
	mu        sync.Mutex
	coord     *scheduler.Coordinator
	store     store.EventStore
	journal   journal.Store
	bus       *eventbus.Bus[scheduler.Change]
	projector calendar.Projector
	monitor   monitoring.Monitor
	log       logger.Logger
	cfg       *config.Config
}

// New creates a Service from the configuration and loads the stored events.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logger.SetLevel(cfg.Log.Level)
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	monitoring.Init(mon)

	projector, err := calendar.NewProjector(cfg.Calendar.Axis(), cfg.Calendar.Navigator())
	if err != nil {
		return nil, fmt.Errorf("projector: %w", err)
	}
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	st, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("event store: %w", err)
	}
	events, err := st.Load(ctx)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("load events: %w", err)
	}
	jr, err := journal.Open(cfg.Journal)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("journal: %w", err)
	}

	bus := eventbus.New[scheduler.Change](32)
	coord := scheduler.NewCoordinator(cfg.Calendar.Scheduler(), logger.New("scheduler"))
	coord.SetMetrics(sink)
	coord.SetBus(bus)
	if jr != nil {
		coord.SetJournal(jr)
	}
	snap, err := coord.Load(events)
	if err != nil {
		_ = st.Close()
		if jr != nil {
			_ = jr.Close()
		}
		return nil, fmt.Errorf("load events: %w", err)
	}
	logg.Infow("schedule loaded", map[string]any{
		"events":    len(snap.Events),
		"conflicts": len(snap.Conflicts),
		"store":     cfg.Store.Type,
	})
	return &Service{
		coord:     coord,
		store:     st,
		journal:   jr,
		bus:       bus,
		projector: projector,
		monitor:   mon,
		log:       logg,
		cfg:       cfg,
	}, nil
}

// Projector returns the projector configured from the calendar section.
func (s *Service) Projector() calendar.Projector { return s.projector }

// Navigator returns the navigator configured from the calendar section.
func (s *Service) Navigator() calendar.Navigator { return s.projector.Navigator }

// Subscribe returns a channel receiving every applied change.
func (s *Service) Subscribe() <-chan scheduler.Change { return s.bus.Subscribe() }

// Snapshot returns the current events and conflict report.
func (s *Service) Snapshot() scheduler.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.Snapshot()
}

// Get returns one event.
func (s *Service) Get(id string) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coord.Get(id)
}

func (s *Service) Create(ctx context.Context, ev model.Event) (scheduler.Snapshot, error) {
	return s.apply(ctx, func(c *scheduler.Coordinator) (scheduler.Snapshot, error) { return c.Create(ev) })
}

func (s *Service) Update(ctx context.Context, ev model.Event) (scheduler.Snapshot, error) {
	return s.apply(ctx, func(c *scheduler.Coordinator) (scheduler.Snapshot, error) { return c.Update(ev) })
}

func (s *Service) Delete(ctx context.Context, id string) (scheduler.Snapshot, error) {
	return s.apply(ctx, func(c *scheduler.Coordinator) (scheduler.Snapshot, error) { return c.Delete(id) })
}

func (s *Service) Duplicate(ctx context.Context, id string) (scheduler.Snapshot, error) {
	return s.apply(ctx, func(c *scheduler.Coordinator) (scheduler.Snapshot, error) { return c.Duplicate(id) })
}

func (s *Service) Reschedule(ctx context.Context, id string, newStart time.Time) (scheduler.Snapshot, error) {
	return s.apply(ctx, func(c *scheduler.Coordinator) (scheduler.Snapshot, error) { return c.Reschedule(id, newStart) })
}

func (s *Service) BulkDelete(ctx context.Context, ids []string) (scheduler.Snapshot, error) {
	return s.apply(ctx, func(c *scheduler.Coordinator) (scheduler.Snapshot, error) { return c.BulkDelete(ids) })
}

// Import merges events into the set: ids already present are replaced, new
// ids are added and events without an id get a generated one. The whole batch
// is rejected if any event is invalid or an id repeats inside it.
func (s *Service) Import(ctx context.Context, events []model.Event) (scheduler.Snapshot, error) {
	return s.apply(ctx, func(c *scheduler.Coordinator) (scheduler.Snapshot, error) {
		incoming := make(map[string]struct{}, len(events))
		for _, e := range events {
			if e.ID == "" {
				continue
			}
			if _, dup := incoming[e.ID]; dup {
				return c.Snapshot(), fmt.Errorf("%w: %s", model.ErrDuplicateID, e.ID)
			}
			incoming[e.ID] = struct{}{}
		}
		merged := make([]model.Event, 0, len(events))
		for _, e := range c.Snapshot().Events {
			if _, replaced := incoming[e.ID]; !replaced {
				merged = append(merged, e)
			}
		}
		return c.Load(append(merged, events...))
	})
}

// apply runs one coordinator call under the lock and writes the change back
// to the event store. A failed write is reported but does not undo the
// in-memory change.
func (s *Service) apply(ctx context.Context, fn func(*scheduler.Coordinator) (scheduler.Snapshot, error)) (scheduler.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := fn(s.coord)
	if err != nil {
		return snap, err
	}
	change, ok := s.coord.LastChange()
	if !ok {
		return snap, nil
	}
	if perr := s.persist(ctx, change, snap); perr != nil {
		s.log.Errorf("persist %s: %v", change.Op, perr)
		s.monitor.CaptureException(perr, map[string]string{"component": "store", "op": string(change.Op)})
	}
	return snap, nil
}

func (s *Service) persist(ctx context.Context, change scheduler.Change, snap scheduler.Snapshot) error {
	if change.Op.Removes() {
		return s.store.Delete(ctx, change.EventIDs...)
	}
	byID := make(map[string]model.Event, len(snap.Events))
	for _, e := range snap.Events {
		byID[e.ID] = e
	}
	var put []model.Event
	for _, id := range change.EventIDs {
		if e, ok := byID[id]; ok {
			put = append(put, e)
		}
	}
	return s.store.Put(ctx, put...)
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/journal", apijournal.NewHandler(s.journal))
	mux.Handle("/", apicalendar.NewHandler(s, s.projector, time.Now))
	return mux
}

// Run serves the HTTP API and the Prometheus endpoint until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer monitoring.RecoverAndReport()

	changes := s.bus.Subscribe()
	go func() {
		for ch := range changes {
			s.log.Debugw("schedule changed", map[string]any{
				"op":        string(ch.Op),
				"events":    ch.EventIDs,
				"conflicts": len(ch.Conflicts),
			})
		}
	}()
	defer s.bus.Unsubscribe(changes)

	if s.cfg.Metrics.HasSink("prometheus") && s.cfg.Metrics.PrometheusPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
				s.monitor.CaptureException(err, map[string]string{"component": "metrics"})
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.API.Listen, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errCh <- srv.Shutdown(shutdownCtx)
	}()
	s.log.Infof("api listening on %s", s.cfg.API.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.monitor.CaptureException(err, map[string]string{"component": "api"})
		return fmt.Errorf("api server: %w", err)
	}
	return <-errCh
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	var errs []error
	if s.journal != nil {
		errs = append(errs, s.journal.Close())
	}
	errs = append(errs, s.store.Close())
	s.monitor.Flush(2 * time.Second)
	return errors.Join(errs...)
}
