// Package infra contains technical adapters such as the SQLite event store,
// the Prometheus sink and the Sentry monitor. These packages depend only on
// the interfaces defined in the core packages and register themselves with
// the core factories from init functions.
package infra
