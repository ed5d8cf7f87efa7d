// Package metrics defines the sinks recording scheduler activity: every
// mutation with its outcome and the shape of the refreshed conflict report.
// Sinks are created from configuration through a factory registry; infra
// packages register concrete implementations such as the Prometheus sink.
// Several configured sinks are combined into a MultiSink automatically.
package metrics
