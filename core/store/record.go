package store

import (
	"fmt"
	"time"

	"github.com/samber/mo"

	"github.com/kilianp07/siteplan/core/model"
)

// EventRecord is the serialised form of an event used by fixture files and
// the HTTP API. A nil reference means the event does not use that resource.
type EventRecord struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end" yaml:"end"`
	Kind        string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	JobSite     *string   `json:"job_site,omitempty" yaml:"job_site,omitempty"`
	Worker      *string   `json:"worker,omitempty" yaml:"worker,omitempty"`
	Equipment   *string   `json:"equipment,omitempty" yaml:"equipment,omitempty"`
}

// ToEvent converts the record into a model.Event. The interval is not
// validated here.
func (r EventRecord) ToEvent() (model.Event, error) {
	kind, err := model.ParseKind(r.Kind)
	if err != nil {
		return model.Event{}, fmt.Errorf("event %q: %w", r.ID, err)
	}
	return model.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Start:       r.Start,
		End:         r.End,
		Kind:        kind,
		JobSite:     fromPtr(r.JobSite),
		Worker:      fromPtr(r.Worker),
		Equipment:   fromPtr(r.Equipment),
	}, nil
}

// RecordOf converts an event into its serialised form.
func RecordOf(e model.Event) EventRecord {
	return EventRecord{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		Kind:        e.Kind.String(),
		JobSite:     toPtr(e.JobSite),
		Worker:      toPtr(e.Worker),
		Equipment:   toPtr(e.Equipment),
	}
}

// RecordsOf converts a slice of events.
func RecordsOf(events []model.Event) []EventRecord {
	out := make([]EventRecord, len(events))
	for i, e := range events {
		out[i] = RecordOf(e)
	}
	return out
}

func fromPtr(p *string) mo.Option[string] {
	if p == nil {
		return mo.None[string]()
	}
	return mo.Some(*p)
}

func toPtr(o mo.Option[string]) *string {
	v, ok := o.Get()
	if !ok {
		return nil
	}
	return &v
}
