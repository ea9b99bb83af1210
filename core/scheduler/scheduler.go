package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/relayctl/core/events"
	"github.com/kilianp07/relayctl/core/relay"
)

// maxSteps bounds a single simulation.
const maxSteps = 10_000_000

// Config defines the simulated window.
type Config struct {
	// Horizon is how far ahead of the start time to simulate.
	Horizon time.Duration
	// Step is the simulated control tick.
	Step time.Duration
}

// Validate checks that the window is simulable.
func (c Config) Validate() error {
	if c.Step <= 0 {
		return errors.New("step must be positive")
	}
	if c.Horizon <= 0 {
		return errors.New("horizon must be positive")
	}
	if c.Horizon/c.Step > maxSteps {
		return fmt.Errorf("horizon %s with step %s exceeds %d steps", c.Horizon, c.Step, maxSteps)
	}
	return nil
}

// TriggerBuilder builds the trigger under test on the simulated clock.
type TriggerBuilder func(relay.Clock) (relay.Trigger, error)

// Relay describes the relay to simulate.
type Relay struct {
	Topic   string
	StartOn bool
	Trigger TriggerBuilder
}

// Entry is one command the relay would publish. Refreshes are not listed.
type Entry struct {
	Topic   string    `json:"topic"`
	Time    time.Time `json:"time"`
	Running bool      `json:"running"`
}

// State renders the commanded position.
func (e Entry) State() string {
	if e.Running {
		return "on"
	}
	return "off"
}

type discard struct{}

func (discard) Publish(string, []byte) error { return nil }

// Plan simulates r from start for cfg.Horizon, one Process call per
// cfg.Step, and returns every command including the initial one.
func Plan(r Relay, start time.Time, cfg Config) ([]Entry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r.Trigger == nil {
		return nil, fmt.Errorf("%w: no trigger for %s", relay.ErrConfiguration, r.Topic)
	}
	now := start
	clock := func() time.Time { return now }
	trg, err := r.Trigger(clock)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	tr, err := relay.New(discard{}, r.Topic, trg,
		relay.WithStartOn(r.StartOn),
		relay.WithClock(clock),
		relay.WithObserver(func(ev events.RelayEvent) {
			if ev.Kind == events.KindCommand {
				entries = append(entries, Entry{Topic: ev.Topic, Time: ev.Time, Running: ev.Running})
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	end := start.Add(cfg.Horizon)
	for now = start.Add(cfg.Step); !now.After(end); now = now.Add(cfg.Step) {
		tr.Process()
	}
	return entries, nil
}

// DutyRatio returns the share of [start, start+horizon) during which the plan
// keeps the relay running.
func DutyRatio(entries []Entry, start time.Time, horizon time.Duration) float64 {
	if len(entries) == 0 || horizon <= 0 {
		return 0
	}
	end := start.Add(horizon)
	var on time.Duration
	for i, e := range entries {
		if !e.Running {
			continue
		}
		until := end
		if i+1 < len(entries) {
			until = entries[i+1].Time
		}
		from := e.Time
		if from.Before(start) {
			from = start
		}
		if until.After(from) {
			on += until.Sub(from)
		}
	}
	return float64(on) / float64(horizon)
}
