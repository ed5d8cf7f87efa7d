package metrics

import "github.com/kilianp07/siteplan/core/factory"

var sinkRegistry = factory.NewRegistry[ScheduleSink]("metrics sink")

func init() {
	_ = RegisterSink("nop", func(map[string]any) (ScheduleSink, error) {
		return NopSink{}, nil
	})
}

// RegisterSink adds a metrics sink factory identified by name.
func RegisterSink(name string, f factory.Factory[ScheduleSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink creates a ScheduleSink from the provided configuration. No
// configuration yields a NopSink, several yield a MultiSink.
func NewSink(cfgs []factory.ModuleConfig) (ScheduleSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]ScheduleSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
