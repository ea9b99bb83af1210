package mqtt

import (
	"errors"
	"sync"

	coremqtt "github.com/kilianp07/relayctl/core/mqtt"
)

// Message is a payload recorded by MockPublisher.
type Message struct {
	Topic   string
	Payload string
}

// MockPublisher records publishes in memory for tests of packages that sit
// above the broker connection.
type MockPublisher struct {
	mu         sync.Mutex
	Messages   []Message
	FailTopics map[string]bool
	Closed     bool
}

var _ coremqtt.Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailTopics: make(map[string]bool)}
}

// Publish records the message, or returns an error when the topic is
// configured to fail. Failed publishes are recorded too.
func (m *MockPublisher) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return coremqtt.ErrNotConnected
	}
	m.Messages = append(m.Messages, Message{Topic: topic, Payload: string(payload)})
	if m.FailTopics[topic] {
		return errors.New("publish failed")
	}
	return nil
}

// Sent returns a copy of the recorded messages for topic.
func (m *MockPublisher) Sent(topic string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Message
	for _, msg := range m.Messages {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}

// Close marks the publisher closed. Later publishes fail.
func (m *MockPublisher) Close() error {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
	return nil
}
