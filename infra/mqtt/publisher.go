package mqtt

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/kilianp07/relayctl/core/mqtt"
	"github.com/kilianp07/relayctl/infra/logger"
)

// publishTimeout bounds how long a background watcher waits for a token.
const publishTimeout = 5 * time.Second

// PahoPublisher implements coremqtt.Publisher and coremqtt.Subscriber on top
// of a connected paho client.
type PahoPublisher struct {
	cli    pahoClient
	qos    byte
	log    logger.Logger
	closed atomic.Bool

	mu   sync.Mutex
	subs map[string]coremqtt.MessageHandler
}

var (
	_ coremqtt.Publisher  = (*PahoPublisher)(nil)
	_ coremqtt.Subscriber = (*PahoPublisher)(nil)
)

func newPahoPublisher(cfg Config, log logger.Logger) *PahoPublisher {
	return &PahoPublisher{qos: cfg.QoS, log: log, subs: make(map[string]coremqtt.MessageHandler)}
}

// Publish hands payload to paho without waiting for delivery. A token that
// has already failed is reported; later failures are only logged.
func (p *PahoPublisher) Publish(topic string, payload []byte) error {
	if p.closed.Load() {
		return coremqtt.ErrNotConnected
	}
	token := p.cli.Publish(topic, p.qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		return nil
	default:
	}
	go p.watch(topic, token)
	return nil
}

func (p *PahoPublisher) watch(topic string, token paho.Token) {
	if !token.WaitTimeout(publishTimeout) {
		p.log.Warnf("publish to %s not completed after %s", topic, publishTimeout)
		return
	}
	if err := token.Error(); err != nil {
		p.log.Errorf("publish to %s: %v", topic, err)
	}
}

// Subscribe registers handler for topic. Subscriptions are restored on every
// reconnect.
func (p *PahoPublisher) Subscribe(topic string, handler coremqtt.MessageHandler) error {
	p.track(topic, handler)
	if !p.cli.IsConnected() {
		return nil
	}
	token := p.cli.Subscribe(topic, p.qos, p.wrap(handler))
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

func (p *PahoPublisher) track(topic string, handler coremqtt.MessageHandler) {
	p.mu.Lock()
	p.subs[topic] = handler
	p.mu.Unlock()
}

// onConnect runs on paho's goroutine after every (re)connect.
func (p *PahoPublisher) onConnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for topic, h := range p.subs {
		topic := topic
		token := p.cli.Subscribe(topic, p.qos, p.wrap(h))
		go func() {
			if token.WaitTimeout(publishTimeout) && token.Error() != nil {
				p.log.Errorf("subscribe %s: %v", topic, token.Error())
			}
		}()
	}
}

func (p *PahoPublisher) wrap(h coremqtt.MessageHandler) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		defer func() {
			if r := recover(); r != nil {
				p.log.Errorf("handler for %s panicked: %v", msg.Topic(), r)
			}
		}()
		h(msg.Topic(), msg.Payload())
	}
}

// onAck is the inbound acknowledgement hook. Devices do not publish
// acknowledgements yet, so the relay state is never updated from here.
func (p *PahoPublisher) onAck(topic string, payload []byte) {
	p.log.Debugw("acknowledgement ignored", map[string]any{"topic": topic, "payload": string(payload)})
}

// IsConnected reports whether the paho client currently holds a session.
func (p *PahoPublisher) IsConnected() bool {
	return !p.closed.Load() && p.cli.IsConnected()
}

// Close disconnects from the broker. Later publishes fail with
// coremqtt.ErrNotConnected.
func (p *PahoPublisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	if p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
