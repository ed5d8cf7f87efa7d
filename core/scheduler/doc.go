// Package scheduler is the single entry point for changes to the event set.
//
// The Coordinator applies create, update, delete, duplicate, reschedule and
// bulk delete operations to its canonical set and recomputes the whole
// conflict report before returning, so callers never observe a report that
// is older than the events it describes. A failed call leaves both untouched.
//
// Each call is also reported to optional side channels: a metrics sink, a
// typed event bus and a mutation journal. Failures on those channels are
// logged and never affect the outcome of the call.
//
// The Coordinator does no locking of its own. Callers sharing one instance
// between goroutines must serialise access.
package scheduler
