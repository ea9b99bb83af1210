package metrics

import (
	"errors"

	"github.com/kilianp07/relayctl/core/events"
)

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRelayEvent forwards ev to every sink. A failing sink does not stop
// the others; all errors are joined.
func (m *MultiSink) RecordRelayEvent(ev events.RelayEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRelayEvent(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordConnectAttempt forwards ev to the sinks that support it.
func (m *MultiSink) RecordConnectAttempt(ev events.ConnectAttempt) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ConnectRecorder); ok {
			if err := rec.RecordConnectAttempt(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
