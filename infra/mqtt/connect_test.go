package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relayctl/core/events"
	coremqtt "github.com/kilianp07/relayctl/core/mqtt"
	"github.com/kilianp07/relayctl/infra/logger"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func testConfig(maxTries int) Config {
	return Config{
		Host:           "broker.test",
		Port:           1883,
		ClientID:       "test",
		MaxTries:       maxTries,
		ConnectTimeout: time.Second,
	}
}

func TestConnectRetryExhaustion(t *testing.T) {
	boom := errors.New("connection refused")
	mc := &mockClient{connectErrs: []error{boom, boom, boom, boom}}
	useMockClient(t, mc)

	var attempts []events.ConnectAttempt
	_, err := Connect(context.Background(), testConfig(3),
		WithLogger(logger.NopLogger{}),
		WithAttemptObserver(func(a events.ConnectAttempt) { attempts = append(attempts, a) }),
	)
	require.Error(t, err)
	assert.Equal(t, 3, mc.connects)
	assert.Len(t, attempts, 3)

	var ce *coremqtt.ConnectError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.Attempts)
	assert.False(t, ce.Timeout)
	assert.ErrorIs(t, err, coremqtt.ErrConnect)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, mc.disconnects, "the abandoned client is disconnected")
}

func TestConnectTimeoutIsFatal(t *testing.T) {
	mc := &mockClient{connectErrs: []error{timeoutErr{}}}
	useMockClient(t, mc)

	_, err := Connect(context.Background(), testConfig(3), WithLogger(logger.NopLogger{}))
	var ce *coremqtt.ConnectError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Timeout)
	assert.Equal(t, 1, mc.connects, "no retry after a timeout")
}

func TestConnectTokenWaitTimeoutIsFatal(t *testing.T) {
	mc := &mockClient{hang: true}
	useMockClient(t, mc)

	_, err := Connect(context.Background(), testConfig(5), WithLogger(logger.NopLogger{}))
	assert.ErrorIs(t, err, coremqtt.ErrConnectTimeout)
	assert.Equal(t, 1, mc.connects)
	assert.Equal(t, 1, mc.disconnects, "a late connect must not leave a live session")
}

func TestConnectSucceedsAfterRetry(t *testing.T) {
	mc := &mockClient{connectErrs: []error{errors.New("refused"), nil}}
	useMockClient(t, mc)

	pub, err := Connect(context.Background(), testConfig(3), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	assert.Equal(t, 2, mc.connects)
	assert.True(t, pub.IsConnected())
}

func TestConnectWaitsBetweenAttempts(t *testing.T) {
	mc := &mockClient{connectErrs: []error{errors.New("refused"), nil}}
	useMockClient(t, mc)
	cfg := testConfig(2)
	cfg.PauseBetween = 20 * time.Millisecond

	start := time.Now()
	_, err := Connect(context.Background(), cfg, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestConnectContextCancelledDuringPause(t *testing.T) {
	mc := &mockClient{connectErrs: []error{errors.New("refused"), errors.New("refused")}}
	useMockClient(t, mc)
	cfg := testConfig(5)
	cfg.PauseBetween = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Connect(ctx, cfg, WithLogger(logger.NopLogger{}))
	assert.ErrorIs(t, err, coremqtt.ErrConnect)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mc.connects)
	assert.Equal(t, 1, mc.disconnects)
}

func TestConnectSubscribesAckTopic(t *testing.T) {
	mc := &mockClient{}
	useMockClient(t, mc)
	cfg := testConfig(1)
	cfg.AckTopic = "home/boiler/ack"

	_, err := Connect(context.Background(), cfg, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"home/boiler/ack"}, mc.subscribed)
	assert.NotPanics(t, func() { mc.deliver("home/boiler/ack", []byte("1")) })

	mc.Connect()
	assert.Equal(t, []string{"home/boiler/ack", "home/boiler/ack"}, mc.subscribed, "restored on reconnect")
}

func TestConnectSucceedsWithoutDisconnect(t *testing.T) {
	mc := &mockClient{}
	useMockClient(t, mc)

	pub, err := Connect(context.Background(), testConfig(1), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	assert.Zero(t, mc.disconnects)
	assert.True(t, pub.IsConnected())
}
