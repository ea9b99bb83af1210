// Package mqtt defines the broker-facing capabilities the relay core depends
// on. Implementations live in infra/mqtt.
package mqtt

// Publisher sends a payload on a topic. Publishing is fire-and-forget: a nil
// error means the message was handed to the transport, not that the device
// received it. Implementations must be safe to call while the transport's
// own network goroutines are running.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Subscriber receives inbound messages on a topic.
type Subscriber interface {
	Subscribe(topic string, handler MessageHandler) error
}

// MessageHandler handles one inbound message.
type MessageHandler func(topic string, payload []byte)
