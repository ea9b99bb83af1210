package config

import (
	"fmt"
	"time"
)

// DefaultTick is the period of the control loop.
const DefaultTick = time.Second

// ControlConfig configures the control loop.
type ControlConfig struct {
	Tick time.Duration `json:"tick"`
}

func (c *ControlConfig) SetDefaults() {
	if c.Tick == 0 {
		c.Tick = DefaultTick
	}
}

func (c ControlConfig) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("control.tick must be positive, got %s", c.Tick)
	}
	return nil
}
