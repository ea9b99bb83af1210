package relay

import (
	"fmt"
	"time"

	"github.com/kilianp07/relayctl/core/events"
	"github.com/kilianp07/relayctl/core/logger"
	"github.com/kilianp07/relayctl/core/mqtt"
)

// DefaultRefreshInterval is the delay between re-publications of an unchanged
// position.
const DefaultRefreshInterval = 60 * time.Second

// Payloads maps positions to the bytes published on the relay topic.
type Payloads struct {
	Running []byte
	Stopped []byte
}

// DefaultPayloads publishes "1" for running and "0" for stopped.
var DefaultPayloads = Payloads{Running: []byte("1"), Stopped: []byte("0")}

// For returns the payload for a position.
func (p Payloads) For(pos Position) []byte {
	if pos == Closed {
		return p.Running
	}
	return p.Stopped
}

// Observer receives an event after every publish.
type Observer func(events.RelayEvent)

// TimedRelay drives one relay through a publisher according to a Trigger.
//
// A TimedRelay is owned by a single control loop and is not safe for
// concurrent use. Its state and last refresh time are only written by Start,
// Stop and Refresh.
type TimedRelay struct {
	topic     string
	publisher mqtt.Publisher
	trigger   Trigger

	state           RelayState
	refreshInterval time.Duration
	lastRefreshedAt time.Time

	startOn  bool
	payloads Payloads
	now      Clock
	log      logger.Logger
	observer Observer
}

// Option configures a TimedRelay.
type Option func(*TimedRelay)

// WithStartOn selects the initial command. The default is true.
func WithStartOn(on bool) Option { return func(r *TimedRelay) { r.startOn = on } }

// WithRefreshInterval overrides DefaultRefreshInterval.
func WithRefreshInterval(d time.Duration) Option {
	return func(r *TimedRelay) { r.refreshInterval = d }
}

// WithClock sets the time source.
func WithClock(c Clock) Option { return func(r *TimedRelay) { r.now = clockOrDefault(c) } }

// WithPayloads overrides DefaultPayloads.
func WithPayloads(p Payloads) Option { return func(r *TimedRelay) { r.payloads = p } }

// WithLogger sets the logger used for publish failures and transitions.
func WithLogger(l logger.Logger) Option {
	return func(r *TimedRelay) {
		if l != nil {
			r.log = l
		}
	}
}

// WithObserver registers a callback invoked after every publish.
func WithObserver(o Observer) Option { return func(r *TimedRelay) { r.observer = o } }

// New builds a TimedRelay and publishes exactly one initial command, Start or
// Stop depending on WithStartOn, so the device is put in a known position
// instead of trusting whatever it was doing before.
func New(publisher mqtt.Publisher, topic string, trigger Trigger, opts ...Option) (*TimedRelay, error) {
	if publisher == nil {
		return nil, fmt.Errorf("%w: nil publisher", ErrConfiguration)
	}
	if trigger == nil {
		return nil, fmt.Errorf("%w: nil trigger", ErrConfiguration)
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: empty topic", ErrConfiguration)
	}
	r := &TimedRelay{
		topic:           topic,
		publisher:       publisher,
		trigger:         trigger,
		refreshInterval: DefaultRefreshInterval,
		startOn:         true,
		payloads:        DefaultPayloads,
		now:             time.Now,
		log:             logger.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.refreshInterval <= 0 {
		return nil, fmt.Errorf("%w: refresh interval must be positive, got %s", ErrConfiguration, r.refreshInterval)
	}
	if r.startOn {
		r.Start()
	} else {
		r.Stop()
	}
	return r, nil
}

// Topic returns the topic commands are published on.
func (r *TimedRelay) Topic() string { return r.topic }

// State returns the last commanded state.
func (r *TimedRelay) State() RelayState { return r.state }

// LastRefreshedAt returns the time of the last publish.
func (r *TimedRelay) LastRefreshedAt() time.Time { return r.lastRefreshedAt }

// Start commands the relay closed. It always publishes, even when the relay
// is already running.
func (r *TimedRelay) Start() {
	// TODO: confirm the position from the device acknowledgement once devices publish one.
	r.command(Closed)
}

// Stop commands the relay open.
func (r *TimedRelay) Stop() { r.command(Open) }

// ChangeState flips the relay.
func (r *TimedRelay) ChangeState() {
	if r.state.IsRunning() {
		r.Stop()
		return
	}
	r.Start()
}

// Refresh re-publishes the current position without changing it.
func (r *TimedRelay) Refresh() {
	now := r.now()
	err := r.publish(r.state.Position)
	r.lastRefreshedAt = now
	r.notify(events.KindRefresh, now, err)
}

// Process is called by the control loop on every tick. A firing trigger
// takes precedence over a due refresh, so both never happen in one call.
func (r *TimedRelay) Process() {
	if r.trigger.ShouldToggle(r.state) {
		r.ChangeState()
		return
	}
	if !r.now().Before(r.lastRefreshedAt.Add(r.refreshInterval)) {
		r.Refresh()
	}
}

func (r *TimedRelay) String() string {
	if r.state.IsRunning() {
		return r.topic + " - Running"
	}
	return r.topic + " - Stopped"
}

func (r *TimedRelay) command(pos Position) {
	now := r.now()
	err := r.publish(pos)
	r.state = RelayState{Position: pos, UpdatedAt: now}
	r.lastRefreshedAt = now
	r.log.Infof("relay %s commanded %s", r.topic, pos)
	r.notify(events.KindCommand, now, err)
}

func (r *TimedRelay) publish(pos Position) error {
	err := r.publisher.Publish(r.topic, r.payloads.For(pos))
	if err != nil {
		r.log.Warnf("publish %s to %s: %v", pos, r.topic, err)
	}
	return err
}

func (r *TimedRelay) notify(kind events.RelayKind, at time.Time, err error) {
	if r.observer == nil {
		return
	}
	r.observer(events.RelayEvent{
		Topic:   r.topic,
		Kind:    kind,
		Running: r.state.IsRunning(),
		Time:    at,
		Err:     err,
	})
}
