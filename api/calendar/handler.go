// Package calendar exposes the schedule over HTTP: projected calendar views,
// the conflict report and the event mutations.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/siteplan/core/calendar"
	"github.com/kilianp07/siteplan/core/conflict"
	"github.com/kilianp07/siteplan/core/model"
	"github.com/kilianp07/siteplan/core/scheduler"
	"github.com/kilianp07/siteplan/core/store"
)

// Scheduler is the mutation surface used by the handler. Calls must be safe
// for concurrent use.
type Scheduler interface {
	Snapshot() scheduler.Snapshot
	Create(ctx context.Context, ev model.Event) (scheduler.Snapshot, error)
	Update(ctx context.Context, ev model.Event) (scheduler.Snapshot, error)
	Delete(ctx context.Context, id string) (scheduler.Snapshot, error)
	Duplicate(ctx context.Context, id string) (scheduler.Snapshot, error)
	Reschedule(ctx context.Context, id string, newStart time.Time) (scheduler.Snapshot, error)
	BulkDelete(ctx context.Context, ids []string) (scheduler.Snapshot, error)
}

type handler struct {
	sched     Scheduler
	projector calendar.Projector
	now       func() time.Time
}

// NewHandler returns the routes of the calendar API:
//
//	GET    /api/calendar?mode=&anchor=&dir=
//	GET    /api/conflicts
//	GET    /api/events
//	POST   /api/events
//	PUT    /api/events/{id}
//	DELETE /api/events/{id}
//	POST   /api/events/{id}/duplicate
//	POST   /api/events/{id}/reschedule
//	POST   /api/events/bulk-delete
func NewHandler(s Scheduler, p calendar.Projector, now func() time.Time) http.Handler {
	if now == nil {
		now = time.Now
	}
	if p.Navigator.Location == nil {
		p.Navigator.Location = time.UTC
	}
	h := &handler{sched: s, projector: p, now: now}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/calendar", h.view)
	mux.HandleFunc("GET /api/conflicts", h.conflicts)
	mux.HandleFunc("GET /api/events", h.list)
	mux.HandleFunc("POST /api/events", h.create)
	mux.HandleFunc("POST /api/events/bulk-delete", h.bulkDelete)
	mux.HandleFunc("PUT /api/events/{id}", h.update)
	mux.HandleFunc("DELETE /api/events/{id}", h.remove)
	mux.HandleFunc("POST /api/events/{id}/duplicate", h.duplicate)
	mux.HandleFunc("POST /api/events/{id}/reschedule", h.reschedule)
	return mux
}

func (h *handler) view(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := calendar.ParseViewMode(q.Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	nav := h.projector.Navigator
	v := calendar.ViewState{Mode: mode, Anchor: h.now().In(nav.Location)}
	if s := q.Get("anchor"); s != "" {
		anchor, err := ParseAnchor(s, nav.Location)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		v.Anchor = anchor
	}
	switch strings.ToLower(q.Get("dir")) {
	case "":
	case "next":
		v = calendar.Advance(v, calendar.Next)
	case "prev":
		v = calendar.Advance(v, calendar.Prev)
	case "today":
		v = nav.Today(v, h.now())
	default:
		http.Error(w, fmt.Sprintf("unknown direction %q", q.Get("dir")), http.StatusBadRequest)
		return
	}
	snap := h.sched.Snapshot()
	proj := h.projector.Project(snap.Events, v, conflict.NewIndex(snap.Conflicts))
	writeJSON(w, http.StatusOK, viewOf(proj))
}

func (h *handler) conflicts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, conflictsOf(h.sched.Snapshot().Conflicts))
}

func (h *handler) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshotOf(h.sched.Snapshot()))
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	ev, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusCreated)(h.sched.Create(r.Context(), ev))
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	ev, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	ev.ID = r.PathValue("id")
	h.respond(w, http.StatusOK)(h.sched.Update(r.Context(), ev))
}

func (h *handler) remove(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK)(h.sched.Delete(r.Context(), r.PathValue("id")))
}

func (h *handler) duplicate(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusCreated)(h.sched.Duplicate(r.Context(), r.PathValue("id")))
}

type rescheduleRequest struct {
	Start time.Time `json:"start"`
}

func (h *handler) reschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Start.IsZero() {
		http.Error(w, "start is required", http.StatusBadRequest)
		return
	}
	h.respond(w, http.StatusOK)(h.sched.Reschedule(r.Context(), r.PathValue("id"), req.Start))
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h *handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.respond(w, http.StatusOK)(h.sched.BulkDelete(r.Context(), req.IDs))
}

// respond writes the snapshot of a mutation, or maps its error to a status.
func (h *handler) respond(w http.ResponseWriter, okStatus int) func(scheduler.Snapshot, error) {
	return func(snap scheduler.Snapshot, err error) {
		if err != nil {
			http.Error(w, err.Error(), StatusOf(err))
			return
		}
		writeJSON(w, okStatus, snapshotOf(snap))
	}
}

// StatusOf maps scheduler errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInterval):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrDuplicateID):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ParseAnchor accepts a YYYY-MM-DD date, interpreted as midnight in loc, or
// an RFC3339 timestamp.
func ParseAnchor(s string, loc *time.Location) (time.Time, error) {
	if d, err := calendar.ParseDate(s); err == nil {
		return d.In(loc), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid anchor %q: want YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (model.Event, bool) {
	var rec store.EventRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return model.Event{}, false
	}
	ev, err := rec.ToEvent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return model.Event{}, false
	}
	return ev, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
