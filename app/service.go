// Package app wires configuration, the broker connection and the relays into
// a running control loop.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/relayctl/config"
	"github.com/kilianp07/relayctl/core/events"
	coremetrics "github.com/kilianp07/relayctl/core/metrics"
	"github.com/kilianp07/relayctl/core/monitoring"
	coremqtt "github.com/kilianp07/relayctl/core/mqtt"
	"github.com/kilianp07/relayctl/core/relay"
	"github.com/kilianp07/relayctl/infra/logger"
	"github.com/kilianp07/relayctl/infra/metrics"
	"github.com/kilianp07/relayctl/infra/mqtt"
	"github.com/kilianp07/relayctl/internal/eventbus"
)

// Publisher is a broker session the service owns and closes.
type Publisher interface {
	coremqtt.Publisher
	Close() error
}

var connect = func(ctx context.Context, cfg mqtt.Config, opts ...mqtt.ConnectOption) (Publisher, error) {
	pub, err := mqtt.Connect(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// Service runs the control loop over every configured relay.
type Service struct {
	cfg    *config.Config
	pub    Publisher
	relays []*relay.TimedRelay
	bus    *eventbus.TypedBus[eventbus.Event]
	log    logger.Logger
	clock  relay.Clock

	stopCollector context.CancelFunc
	collectorDone <-chan struct{}
}

// Option customises a Service.
type Option func(*Service)

// WithClock sets the time source of every relay and trigger.
func WithClock(c relay.Clock) Option { return func(s *Service) { s.clock = c } }

// BuildTriggers builds one trigger per relay. It fails on the first invalid
// trigger configuration.
func BuildTriggers(relays []config.RelayConfig, clock relay.Clock) ([]relay.Trigger, error) {
	triggers := make([]relay.Trigger, len(relays))
	for i, rc := range relays {
		t, err := relay.NewTrigger(rc.Trigger, clock)
		if err != nil {
			return nil, fmt.Errorf("relay %s: %w", rc.Topic, err)
		}
		triggers[i] = t
	}
	return triggers, nil
}

// New validates the triggers, connects to the broker and builds the relays.
// Each relay publishes its initial command before New returns.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg, log: logger.New("service"), clock: time.Now}
	for _, o := range opts {
		o(s)
	}

	triggers, err := BuildTriggers(cfg.Relays, s.clock)
	if err != nil {
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, err
	}

	s.bus = eventbus.New()
	collectorCtx, cancel := context.WithCancel(context.Background())
	s.stopCollector = cancel
	s.collectorDone = metrics.StartEventCollector(collectorCtx, s.bus, sink)

	pub, err := connect(ctx, cfg.MQTT,
		mqtt.WithLogger(logger.New("mqtt")),
		mqtt.WithAttemptObserver(func(a events.ConnectAttempt) { s.bus.Publish(a) }),
	)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"component": "mqtt", "broker": cfg.MQTT.BrokerURL()})
		s.shutdownBus()
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	s.pub = pub

	relayLog := logger.New("relay")
	for i, rc := range cfg.Relays {
		r, err := relay.New(pub, rc.Topic, triggers[i],
			relay.WithStartOn(rc.StartsOn()),
			relay.WithRefreshInterval(rc.RefreshInterval),
			relay.WithPayloads(rc.Payloads()),
			relay.WithClock(s.clock),
			relay.WithLogger(relayLog),
			relay.WithObserver(func(ev events.RelayEvent) { s.bus.Publish(ev) }),
		)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.relays = append(s.relays, r)
	}
	s.log.Infof("%d relay(s) ready", len(s.relays))
	return s, nil
}

// Relays returns the managed relays in configuration order.
func (s *Service) Relays() []*relay.TimedRelay { return s.relays }

// Run processes every relay once per control tick until ctx is cancelled.
// The Prometheus endpoint is served for the same lifetime when a prometheus
// sink is configured.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.HasSink("prometheus") {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.Listen); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	ticker := time.NewTicker(s.cfg.Control.Tick)
	defer ticker.Stop()
	return s.runLoop(ctx, ticker.C)
}

func (s *Service) runLoop(ctx context.Context, tick <-chan time.Time) error {
	defer monitoring.Recover()
	for {
		select {
		case <-ctx.Done():
			s.log.Infof("control loop stopped")
			return nil
		case <-tick:
			for _, r := range s.relays {
				r.Process()
				s.log.Debugf("%s", r)
			}
		}
	}
}

// Close disconnects from the broker and stops the metrics collector.
func (s *Service) Close() error {
	var err error
	if s.pub != nil {
		err = s.pub.Close()
	}
	s.shutdownBus()
	return err
}

// shutdownBus closes the bus and waits for the collector to record what is
// still buffered.
func (s *Service) shutdownBus() {
	if s.bus != nil {
		s.bus.Close()
	}
	if s.stopCollector != nil {
		<-s.collectorDone
		s.stopCollector()
	}
}
