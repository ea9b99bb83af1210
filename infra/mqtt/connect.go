package mqtt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/relayctl/core/events"
	coremqtt "github.com/kilianp07/relayctl/core/mqtt"
	"github.com/kilianp07/relayctl/infra/logger"
)

// pahoClient is the subset of paho.Client used here.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// ConnectOption customises Connect.
type ConnectOption func(*connector)

// WithLogger overrides the default "mqtt" component logger.
func WithLogger(l logger.Logger) ConnectOption {
	return func(c *connector) {
		if l != nil {
			c.log = l
		}
	}
}

// WithAttemptObserver is called after every connection attempt.
func WithAttemptObserver(fn func(events.ConnectAttempt)) ConnectOption {
	return func(c *connector) { c.observe = fn }
}

type connector struct {
	cfg     Config
	log     logger.Logger
	observe func(events.ConnectAttempt)
	sleep   func(ctx context.Context, d time.Duration) error
}

// Connect establishes the broker connection with bounded retry and returns a
// publisher whose network goroutines keep the session alive.
//
// Up to cfg.MaxTries blocking attempts are made, cfg.PauseBetween apart. An
// attempt that times out is fatal immediately; any other failure is retried
// and the last one is returned inside a *coremqtt.ConnectError.
func Connect(ctx context.Context, cfg Config, opts ...ConnectOption) (*PahoPublisher, error) {
	if cfg.MaxTries < 1 {
		cfg.MaxTries = 1
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	c := &connector{cfg: cfg, log: logger.New("mqtt"), sleep: sleepCtx}
	for _, o := range opts {
		o(c)
	}

	clientOpts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, &coremqtt.ConnectError{Err: err}
	}
	pub := newPahoPublisher(cfg, c.log)
	clientOpts.SetOnConnectHandler(func(_ paho.Client) { pub.onConnect() })
	clientOpts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		c.log.Errorf("connection lost: %v", err)
	})
	clientOpts.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		c.log.Warnf("reconnecting to %s", cfg.BrokerURL())
	})
	cli := newMQTTClient(clientOpts)
	pub.cli = cli

	broker := cfg.BrokerURL()
	c.log.Infof("connecting to %s", broker)
	for attempt := 1; ; attempt++ {
		err := c.attempt(cli)
		if c.observe != nil {
			c.observe(events.ConnectAttempt{Broker: broker, Attempt: attempt, Err: err, Time: time.Now()})
		}
		if err == nil {
			c.log.Infof("connected to %s", broker)
			if cfg.AckTopic != "" {
				if err := pub.Subscribe(cfg.AckTopic, pub.onAck); err != nil {
					c.log.Warnf("ack topic: %v", err)
				}
			}
			return pub, nil
		}
		if isTimeout(err) {
			return nil, abort(cli, &coremqtt.ConnectError{Attempts: attempt, Timeout: true, Err: err})
		}
		if attempt >= cfg.MaxTries {
			return nil, abort(cli, &coremqtt.ConnectError{Attempts: attempt, Err: err})
		}
		c.log.Warnf("failed to connect (%d/%d): %v; retrying in %s", attempt, cfg.MaxTries, err, cfg.PauseBetween)
		if err := c.sleep(ctx, cfg.PauseBetween); err != nil {
			return nil, abort(cli, &coremqtt.ConnectError{Attempts: attempt, Err: err})
		}
	}
}

func (c *connector) attempt(cli pahoClient) error {
	token := cli.Connect()
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		return coremqtt.ErrConnectTimeout
	}
	return token.Error()
}

// abort stops a connect paho may still be completing in the background so a
// late success does not leave an orphaned session.
func abort(cli pahoClient, err *coremqtt.ConnectError) error {
	cli.Disconnect(0)
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, coremqtt.ErrConnectTimeout) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("connect aborted: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
