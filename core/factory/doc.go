// Package factory provides a small generic registry used to instantiate modules
// from configuration. A module is described by a type string and a map of raw
// settings; the registered factory decodes the map into its own typed struct.
//
// Example usage:
//
//	reg := factory.NewRegistry[relay.Trigger]()
//	reg.Register("fixed_interval", func(conf map[string]any) (relay.Trigger, error) {
//	    var c struct{ Interval time.Duration `json:"interval"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return relay.NewFixedInterval(c.Interval, nil)
//	})
//	t, err := reg.Create(factory.ModuleConfig{Type: "fixed_interval", Conf: map[string]any{"interval": "10m"}})
package factory
