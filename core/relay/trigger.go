package relay

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Trigger decides, from the current relay state, whether the relay should flip.
type Trigger interface {
	ShouldToggle(state RelayState) bool
}

// FixedInterval toggles once the current state is older than Delta, whatever
// the position. On and off periods are therefore equal.
type FixedInterval struct {
	Delta time.Duration
	now   Clock
}

// NewFixedInterval returns a FixedInterval trigger. A nil clock uses time.Now.
func NewFixedInterval(delta time.Duration, clock Clock) (*FixedInterval, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: fixed interval must be positive, got %s", ErrConfiguration, delta)
	}
	return &FixedInterval{Delta: delta, now: clockOrDefault(clock)}, nil
}

// ShouldToggle implements Trigger.
func (t *FixedInterval) ShouldToggle(state RelayState) bool {
	return t.now().After(state.UpdatedAt.Add(t.Delta))
}

// PercentDutyCycle keeps the relay closed for PercentOn of every Interval.
type PercentDutyCycle struct {
	Interval  time.Duration
	PercentOn float64

	on  time.Duration
	off time.Duration
	now Clock
}

// NewPercentDutyCycle validates percentOn against [0, 1] and derives the on and
// off durations. percentOn 0 and 1 are accepted and give always-off and
// always-on cycles, apart from one control tick at each boundary.
func NewPercentDutyCycle(interval time.Duration, percentOn float64, clock Clock) (*PercentDutyCycle, error) {
	if math.IsNaN(percentOn) || percentOn < 0 || percentOn > 1 {
		return nil, fmt.Errorf("%w: percent_on must be in [0, 1], got %v", ErrConfiguration, percentOn)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: duty cycle interval must be positive, got %s", ErrConfiguration, interval)
	}
	on := time.Duration(float64(interval) * percentOn)
	return &PercentDutyCycle{
		Interval:  interval,
		PercentOn: percentOn,
		on:        on,
		off:       interval - on,
		now:       clockOrDefault(clock),
	}, nil
}

// OnDuration is the time the relay stays closed in each cycle.
func (t *PercentDutyCycle) OnDuration() time.Duration { return t.on }

// OffDuration is the time the relay stays open in each cycle.
func (t *PercentDutyCycle) OffDuration() time.Duration { return t.off }

// ShouldToggle implements Trigger.
func (t *PercentDutyCycle) ShouldToggle(state RelayState) bool {
	elapsed := t.now().Sub(state.UpdatedAt)
	if state.IsRunning() {
		return elapsed >= t.on
	}
	return elapsed >= t.off
}

// ScheduledHours follows the hour of day.
//
// Hours lists the hours during which the relay must be OFF: the relay should
// run whenever the current hour is not in the set. The name is kept from the
// deployed configuration format even though it reads inverted.
//
// The comparison is level-triggered: every call recomputes the desired
// position and requests a toggle whenever the actual position disagrees.
type ScheduledHours struct {
	hours    map[int]struct{}
	location *time.Location
	now      Clock
}

// NewScheduledHours validates that every hour is within [0, 23]. A nil
// location evaluates hours in the clock's own location.
func NewScheduledHours(hours []int, location *time.Location, clock Clock) (*ScheduledHours, error) {
	set := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		if h < 0 || h > 23 {
			return nil, fmt.Errorf("%w: scheduled hour %d outside [0, 23]", ErrConfiguration, h)
		}
		set[h] = struct{}{}
	}
	return &ScheduledHours{hours: set, location: location, now: clockOrDefault(clock)}, nil
}

// Hours returns the configured off hours in ascending order.
func (t *ScheduledHours) Hours() []int {
	out := make([]int, 0, len(t.hours))
	for h := range t.hours {
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}

// ShouldRun reports whether the relay should be running at time now.
func (t *ScheduledHours) ShouldRun(now time.Time) bool {
	if t.location != nil {
		now = now.In(t.location)
	}
	_, off := t.hours[now.Hour()]
	return !off
}

// ShouldToggle implements Trigger.
func (t *ScheduledHours) ShouldToggle(state RelayState) bool {
	return t.ShouldRun(t.now()) != state.IsRunning()
}
