package mqtt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremqtt "github.com/kilianp07/relayctl/core/mqtt"
	"github.com/kilianp07/relayctl/infra/logger"
)

func connectedPublisher(t *testing.T, mc *mockClient) *PahoPublisher {
	t.Helper()
	useMockClient(t, mc)
	cfg := testConfig(1)
	cfg.QoS = 1
	pub, err := Connect(context.Background(), cfg, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	return pub
}

func TestPublish(t *testing.T) {
	mc := &mockClient{}
	pub := connectedPublisher(t, mc)

	require.NoError(t, pub.Publish("home/boiler", []byte("1")))
	require.Len(t, mc.published, 1)
	assert.Equal(t, publishedMsg{topic: "home/boiler", qos: 1, payload: []byte("1")}, mc.published[0])
}

func TestPublishReportsCompletedFailure(t *testing.T) {
	boom := errors.New("not authorised")
	mc := &mockClient{publishErr: boom}
	pub := connectedPublisher(t, mc)
	assert.ErrorIs(t, pub.Publish("t", []byte("0")), boom)
}

func TestPublishDoesNotBlock(t *testing.T) {
	mc := &mockClient{pending: true}
	pub := connectedPublisher(t, mc)
	assert.NoError(t, pub.Publish("t", []byte("0")))
}

func TestPublishAfterClose(t *testing.T) {
	mc := &mockClient{}
	pub := connectedPublisher(t, mc)
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close())
	assert.False(t, pub.IsConnected())
	assert.ErrorIs(t, pub.Publish("t", []byte("1")), coremqtt.ErrNotConnected)
	assert.Empty(t, mc.published)
}

func TestSubscribeRestoredOnReconnect(t *testing.T) {
	mc := &mockClient{}
	pub := connectedPublisher(t, mc)

	var got []string
	require.NoError(t, pub.Subscribe("home/boiler/state", func(_ string, payload []byte) {
		got = append(got, string(payload))
	}))
	assert.Equal(t, []string{"home/boiler/state"}, mc.subscribed)

	pub.onConnect()
	assert.Equal(t, []string{"home/boiler/state", "home/boiler/state"}, mc.subscribed)

	mc.deliver("home/boiler/state", []byte("1"))
	assert.Equal(t, []string{"1"}, got)
}

func TestSubscribeHandlerPanicRecovered(t *testing.T) {
	mc := &mockClient{}
	pub := connectedPublisher(t, mc)
	require.NoError(t, pub.Subscribe("t", func(string, []byte) { panic("boom") }))
	assert.NotPanics(t, func() { mc.deliver("t", nil) })
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	m.FailTopics["broken"] = true

	require.NoError(t, m.Publish("ok", []byte("1")))
	assert.Error(t, m.Publish("broken", []byte("0")))
	assert.Len(t, m.Messages, 2)
	assert.Equal(t, []Message{{Topic: "ok", Payload: "1"}}, m.Sent("ok"))
}
