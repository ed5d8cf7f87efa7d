// Package factory instantiates pluggable modules (event stores, metrics sinks)
// from configuration. A module is selected by a type string and receives a
// map of raw settings that its factory decodes into a typed struct:
//
//	stores := factory.NewRegistry[store.EventStore]("event store")
//	_ = stores.Register("sqlite", func(conf map[string]any) (store.EventStore, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return sqlite.Open(c.Path)
//	})
//	s, err := stores.Create(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": "plan.db"}})
package factory
