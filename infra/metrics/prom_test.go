package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relayctl/core/events"
)

func TestPromSinkRecordRelayEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRelayEvent(events.RelayEvent{Topic: "home/boiler", Kind: events.KindCommand, Running: true}))
	require.NoError(t, sink.RecordRelayEvent(events.RelayEvent{Topic: "home/boiler", Kind: events.KindRefresh, Running: true}))
	require.NoError(t, sink.RecordRelayEvent(events.RelayEvent{Topic: "home/boiler", Kind: events.KindCommand, Err: errors.New("down")}))

	expected := `
# HELP relay_publishes_total Total number of relay publishes
# TYPE relay_publishes_total counter
relay_publishes_total{kind="command",result="error",topic="home/boiler"} 1
relay_publishes_total{kind="command",result="ok",topic="home/boiler"} 1
relay_publishes_total{kind="refresh",result="ok",topic="home/boiler"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(sink.publishes, strings.NewReader(expected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.running.WithLabelValues("home/boiler")))
}

func TestPromSinkRecordConnectAttempt(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	require.NoError(t, sink.RecordConnectAttempt(events.ConnectAttempt{Attempt: 1, Err: errors.New("refused")}))
	require.NoError(t, sink.RecordConnectAttempt(events.ConnectAttempt{Attempt: 2}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.connects.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.connects.WithLabelValues("ok")))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, second.RecordRelayEvent(events.RelayEvent{Topic: "pump", Kind: events.KindCommand, Running: true}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.running.WithLabelValues("pump")))
}
