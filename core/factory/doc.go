// Package factory instantiates pluggable modules, such as metrics sinks and
// study stores, from configuration. A module is named by a type string and
// configured by a map of raw settings that its factory decodes into a typed
// struct.
//
//	reg := factory.NewRegistry[results.Store]()
//	reg.MustRegister("jsonl", func(conf map[string]any) (results.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return store.NewJSONLStore(c.Path, store.Rotation{})
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "studies.jsonl"}})
package factory
