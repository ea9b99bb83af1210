package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/relayctl/core/events"
	coremetrics "github.com/kilianp07/relayctl/core/metrics"
)

// PromSink records relay activity in Prometheus metrics.
type PromSink struct {
	publishes *prometheus.CounterVec
	running   *prometheus.GaugeVec
	connects  *prometheus.CounterVec
}

var (
	_ coremetrics.MetricsSink     = (*PromSink)(nil)
	_ coremetrics.ConnectRecorder = (*PromSink)(nil)
)

// NewPromSink registers relay metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics that
// are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	publishes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_publishes_total",
		Help: "Total number of relay publishes",
	}, []string{"topic", "kind", "result"})
	running := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "relay_running",
		Help: "1 when the relay was last commanded running, 0 otherwise",
	}, []string{"topic"})
	connects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_connect_attempts_total",
		Help: "Total number of broker connection attempts",
	}, []string{"outcome"})

	var err error
	if publishes, err = register(reg, publishes); err != nil {
		return nil, err
	}
	if running, err = register(reg, running); err != nil {
		return nil, err
	}
	if connects, err = register(reg, connects); err != nil {
		return nil, err
	}
	return &PromSink{publishes: publishes, running: running, connects: connects}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRelayEvent counts the publish and updates the running gauge.
func (s *PromSink) RecordRelayEvent(ev events.RelayEvent) error {
	s.publishes.WithLabelValues(ev.Topic, string(ev.Kind), result(ev.Err)).Inc()
	v := 0.0
	if ev.Running {
		v = 1
	}
	s.running.WithLabelValues(ev.Topic).Set(v)
	return nil
}

// RecordConnectAttempt counts a connection attempt by outcome.
func (s *PromSink) RecordConnectAttempt(ev events.ConnectAttempt) error {
	s.connects.WithLabelValues(result(ev.Err)).Inc()
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
