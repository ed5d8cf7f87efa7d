package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/siteplan/core/metrics"
)

// init registers the built-in Prometheus sink. Importing this package for its
// side effects makes the "prometheus" type available in configuration.
func init() {
	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.ScheduleSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})
}
