package metrics

import "github.com/kilianp07/relayctl/core/events"

// MetricsSink records relay publishes.
type MetricsSink interface {
	RecordRelayEvent(ev events.RelayEvent) error
}

// ConnectRecorder is implemented by sinks that track broker connection
// attempts.
type ConnectRecorder interface {
	RecordConnectAttempt(ev events.ConnectAttempt) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRelayEvent(events.RelayEvent) error         { return nil }
func (NopSink) RecordConnectAttempt(events.ConnectAttempt) error { return nil }
