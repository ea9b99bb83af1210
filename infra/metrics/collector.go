package metrics

import (
	"context"

	"github.com/kilianp07/relayctl/core/events"
	coremetrics "github.com/kilianp07/relayctl/core/metrics"
	"github.com/kilianp07/relayctl/infra/logger"
	"github.com/kilianp07/relayctl/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records events in sink
// from a background goroutine. It returns a channel closed when the collector
// has stopped, which happens when ctx is cancelled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.RelayEvent:
		return sink.RecordRelayEvent(e)
	case events.ConnectAttempt:
		if r, ok := sink.(coremetrics.ConnectRecorder); ok {
			return r.RecordConnectAttempt(e)
		}
	}
	return nil
}
