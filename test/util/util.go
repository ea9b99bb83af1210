// Package util provides helpers shared across integration tests.
//
// StartMosquitto launches a disposable Mosquitto broker in a Docker container
// and returns its host, mapped port and a cleanup function.
package util

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// MosquittoReadyTimeout bounds the wait for the broker to accept clients.
	MosquittoReadyTimeout = 10 * time.Second

	pollInterval = 50 * time.Millisecond
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
log_type notice
connection_messages true
`

// Broker locates a running test broker.
type Broker struct {
	Host string
	Port int
}

// URL returns the tcp:// broker address.
func (b Broker) URL() string { return fmt.Sprintf("tcp://%s:%d", b.Host, b.Port) }

// StartMosquitto launches a temporary Mosquitto broker inside a Docker
// container. The returned cleanup terminates it.
func StartMosquitto(ctx context.Context) (Broker, func(), error) {
	dir, err := os.MkdirTemp("", "mosq")
	if err != nil {
		return Broker{}, nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(mosquittoConf), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return Broker{}, nil, err
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		_ = os.RemoveAll(dir)
		return Broker{}, nil, err
	}
	cleanup := func() {
		_ = cont.Terminate(context.Background())
		_ = os.RemoveAll(dir)
	}

	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return Broker{}, nil, err
	}
	mapped, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		cleanup()
		return Broker{}, nil, err
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		cleanup()
		return Broker{}, nil, err
	}
	b := Broker{Host: host, Port: port}

	waitCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := waitForMQTTReady(waitCtx, b.URL()); err != nil {
		cleanup()
		return Broker{}, nil, err
	}
	return b, cleanup, nil
}

func waitForMQTTReady(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	for {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("broker not ready: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// Subscribe connects a separate client to broker and forwards every payload
// received on topic to the returned channel.
func Subscribe(broker, topic string) (<-chan string, func(), error) {
	msgs := make(chan string, 16)
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("observer"))
	if t := cli.Connect(); t.Wait() && t.Error() != nil {
		return nil, nil, t.Error()
	}
	t := cli.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) {
		select {
		case msgs <- string(m.Payload()):
		default:
		}
	})
	if t.Wait() && t.Error() != nil {
		cli.Disconnect(100)
		return nil, nil, t.Error()
	}
	return msgs, func() { cli.Disconnect(100) }, nil
}
