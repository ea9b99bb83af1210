package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kilianp07/relayctl/core/factory"
	"github.com/kilianp07/relayctl/core/relay"
)

// RelayConfig describes one relay and its trigger.
type RelayConfig struct {
	Topic string `json:"topic"`
	// StartOn selects the initial command; nil means true.
	StartOn         *bool                `json:"start_on"`
	RefreshInterval time.Duration        `json:"refresh_interval"`
	PayloadRunning  string               `json:"payload_running"`
	PayloadStopped  string               `json:"payload_stopped"`
	Trigger         factory.ModuleConfig `json:"trigger"`
}

func (c *RelayConfig) SetDefaults() {
	if c.StartOn == nil {
		on := true
		c.StartOn = &on
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = relay.DefaultRefreshInterval
	}
	if c.PayloadRunning == "" {
		c.PayloadRunning = string(relay.DefaultPayloads.Running)
	}
	if c.PayloadStopped == "" {
		c.PayloadStopped = string(relay.DefaultPayloads.Stopped)
	}
}

func (c RelayConfig) Validate() error {
	switch {
	case c.Topic == "":
		return errors.New("topic is required")
	case c.RefreshInterval <= 0:
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	case c.PayloadRunning == c.PayloadStopped:
		return fmt.Errorf("payload_running and payload_stopped must differ, both are %q", c.PayloadRunning)
	case c.Trigger.Type == "":
		return errors.New("trigger.type is required")
	case !slices.Contains(relay.TriggerTypes(), c.Trigger.Type):
		return fmt.Errorf("unknown trigger.type %q, expected one of %s", c.Trigger.Type, strings.Join(relay.TriggerTypes(), ", "))
	}
	return nil
}

// Payloads returns the configured payload encoding.
func (c RelayConfig) Payloads() relay.Payloads {
	return relay.Payloads{Running: []byte(c.PayloadRunning), Stopped: []byte(c.PayloadStopped)}
}

// StartsOn reports the initial command, true when unset.
func (c RelayConfig) StartsOn() bool { return c.StartOn == nil || *c.StartOn }
