// Package journal exposes the mutation journal via GET /api/journal.
package journal

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/siteplan/core/scheduler/journal"
)

// NewHandler returns an HTTP handler listing journal records. Supported query
// parameters are start and end (RFC3339), event_id and op. A nil store
// answers 404.
func NewHandler(store journal.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if store == nil {
			http.Error(w, "journal disabled", http.StatusNotFound)
			return
		}
		params := r.URL.Query()
		q := journal.Query{EventID: params.Get("event_id"), Op: params.Get("op")}
		for name, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
			s := params.Get(name)
			if s == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid "+name+": "+err.Error(), http.StatusBadRequest)
				return
			}
			*dst = t
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []journal.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
