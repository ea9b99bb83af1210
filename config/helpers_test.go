package config

import "github.com/kilianp07/relayctl/core/factory"

func factoryType(name string) factory.ModuleConfig {
	return factory.ModuleConfig{Type: name, Conf: map[string]any{}}
}
