// Package config loads the relayctl configuration from an optional file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/relayctl/core/metrics"
	"github.com/kilianp07/relayctl/core/relay"
	"github.com/kilianp07/relayctl/infra/mqtt"
)

// EnvPrefix prefixes generic environment overrides, e.g.
// RELAYCTL_MQTT__MAX_TRIES=3 sets mqtt.max_tries.
const EnvPrefix = "RELAYCTL_"

type Config struct {
	MQTT    mqtt.Config    `json:"mqtt"`
	Control ControlConfig  `json:"control"`
	Relays  []RelayConfig  `json:"relays"`
	Logging LoggingConfig  `json:"logging"`
	Metrics metrics.Config `json:"metrics"`
	Sentry  SentryConfig   `json:"sentry"`
}

// Load reads path (YAML or JSON by extension; skipped when empty), applies
// the MQTT_HOST/MQTT_PORT and RELAYCTL_ environment overrides, fills defaults
// and validates the result. Validation failures wrap relay.ErrConfiguration.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("MQTT_", ".", brokerEnvKey), nil); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("%w: %w", relay.ErrConfiguration, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", relay.ErrConfiguration, ext)
	}
}

// brokerEnvKey maps the broker variables understood by deployed devices.
// Other MQTT_* variables are ignored.
func brokerEnvKey(s string) string {
	switch s {
	case "MQTT_HOST":
		return "mqtt.host"
	case "MQTT_PORT":
		return "mqtt.port"
	}
	return ""
}

// SetDefaults fills unset fields in every section.
func (c *Config) SetDefaults() {
	c.MQTT.SetDefaults()
	c.Control.SetDefaults()
	for i := range c.Relays {
		c.Relays[i].SetDefaults()
	}
	c.Logging.SetDefaults()
	c.Metrics.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	var errs []error
	if err := c.MQTT.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Control.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Relays) == 0 {
		errs = append(errs, errors.New("at least one relay is required"))
	}
	seen := make(map[string]bool, len(c.Relays))
	for i, r := range c.Relays {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("relays[%d]: %w", i, err))
		}
		if seen[r.Topic] {
			errs = append(errs, fmt.Errorf("relays[%d]: duplicate topic %q", i, r.Topic))
		}
		seen[r.Topic] = true
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", relay.ErrConfiguration, err)
	}
	return nil
}
