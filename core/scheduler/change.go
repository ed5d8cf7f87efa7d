package scheduler

import (
	"time"

	"github.com/kilianp07/siteplan/core/model"
)

// Op names a coordinator operation.
type Op string

const (
	OpLoad       Op = "load"
	OpCreate     Op = "create"
	OpUpdate     Op = "update"
	OpDelete     Op = "delete"
	OpDuplicate  Op = "duplicate"
	OpReschedule Op = "reschedule"
	OpBulkDelete Op = "bulk_delete"
)

// Removes reports whether the operation deletes the events it names.
func (o Op) Removes() bool {
	return o == OpDelete || o == OpBulkDelete
}

// Snapshot is the event set together with the conflict report computed from
// exactly that set.
type Snapshot struct {
	Events    []model.Event         `json:"events"`
	Conflicts []model.ConflictGroup `json:"conflicts"`
}

// Change is published on the bus after every successful mutation. EventIDs
// lists the events written or removed by the operation. For deletes only ids
// that existed are listed.
type Change struct {
	Op        Op
	EventIDs  []string
	Conflicts []model.ConflictGroup
	Time      time.Time
}
