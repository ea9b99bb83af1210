package mqtt_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremqtt "github.com/kilianp07/relayctl/core/mqtt"
	"github.com/kilianp07/relayctl/core/relay"
	"github.com/kilianp07/relayctl/infra/mqtt"
	"github.com/kilianp07/relayctl/test/util"
)

func TestRelayAgainstMosquitto(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	msgs, unsubscribe, err := util.Subscribe(broker.URL(), "home/boiler/relay")
	require.NoError(t, err)
	defer unsubscribe()

	cfg := mqtt.Config{Host: broker.Host, Port: broker.Port, QoS: 1}
	cfg.SetDefaults()
	pub, err := mqtt.Connect(ctx, cfg)
	require.NoError(t, err)
	defer pub.Close()

	trg, err := relay.NewFixedInterval(time.Hour, nil)
	require.NoError(t, err)
	r, err := relay.New(pub, "home/boiler/relay", trg)
	require.NoError(t, err)
	r.Stop()

	for _, want := range []string{"1", "0"} {
		select {
		case got := <-msgs:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("no %q received", want)
		}
	}
}

func TestConnectRefusedExhaustsRetries(t *testing.T) {
	if testing.Short() {
		t.Skip("opens a local socket")
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := mqtt.Config{Host: "127.0.0.1", Port: port, ClientID: "refused", MaxTries: 2, ConnectTimeout: 2 * time.Second}
	_, err = mqtt.Connect(context.Background(), cfg)
	var ce *coremqtt.ConnectError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, 2, ce.Attempts)
	assert.False(t, ce.Timeout)
}
