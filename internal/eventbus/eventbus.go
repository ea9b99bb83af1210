// Package eventbus carries relay and connection events from the control loop
// to background collectors.
package eventbus

// Event is any value published on an EventBus. Collectors switch on the
// concrete types from core/events.
type Event any

// EventBus is the untyped bus shared by the service and the metrics
// collector.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// New creates an EventBus with the default subscriber buffer.
func New() *TypedBus[Event] { return NewTyped[Event](DefaultBuffer) }

var _ EventBus = (*TypedBus[Event])(nil)
