package relay

import (
	"fmt"
	"time"

	"github.com/kilianp07/relayctl/core/factory"
)

// Trigger type names accepted in configuration.
const (
	TypeFixedInterval    = "fixed_interval"
	TypePercentDutyCycle = "percent_duty_cycle"
	TypeScheduledHours   = "scheduled_hours"
)

// builder finishes a decoded trigger once the clock is known.
type builder func(Clock) (Trigger, error)

var triggers = factory.NewRegistry[builder]()

func init() {
	triggers.MustRegister(TypeFixedInterval, func(conf map[string]any) (builder, error) {
		var c struct {
			Interval time.Duration `json:"interval"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(clock Clock) (Trigger, error) { return NewFixedInterval(c.Interval, clock) }, nil
	})

	triggers.MustRegister(TypePercentDutyCycle, func(conf map[string]any) (builder, error) {
		var c struct {
			Interval  time.Duration `json:"interval"`
			PercentOn float64       `json:"percent_on"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(clock Clock) (Trigger, error) {
			return NewPercentDutyCycle(c.Interval, c.PercentOn, clock)
		}, nil
	})

	triggers.MustRegister(TypeScheduledHours, func(conf map[string]any) (builder, error) {
		var c struct {
			Hours    []int  `json:"hours"`
			Timezone string `json:"timezone"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		var loc *time.Location
		if c.Timezone != "" {
			l, err := time.LoadLocation(c.Timezone)
			if err != nil {
				return nil, fmt.Errorf("timezone: %w", err)
			}
			loc = l
		}
		return func(clock Clock) (Trigger, error) { return NewScheduledHours(c.Hours, loc, clock) }, nil
	})
}

// NewTrigger builds a Trigger from its module configuration. Every failure,
// including an unknown type, wraps ErrConfiguration.
func NewTrigger(cfg factory.ModuleConfig, clock Clock) (Trigger, error) {
	b, err := triggers.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: trigger %q: %w", ErrConfiguration, cfg.Type, err)
	}
	t, err := b(clock)
	if err != nil {
		// constructor errors already wrap ErrConfiguration
		return nil, fmt.Errorf("trigger %q: %w", cfg.Type, err)
	}
	return t, nil
}

// TriggerTypes lists the trigger types NewTrigger accepts.
func TriggerTypes() []string { return triggers.Types() }
