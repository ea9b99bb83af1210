package metrics

import "github.com/kilianp07/relayctl/core/factory"

// DefaultListen is the address of the Prometheus endpoint.
const DefaultListen = ":9100"

// Config defines settings for metrics sinks.
type Config struct {
	Listen string                 `json:"listen" yaml:"listen"`
	Sinks  []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
}

// HasSink reports whether a sink of type name is configured.
func (c Config) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if s.Type == name {
			return true
		}
	}
	return false
}
