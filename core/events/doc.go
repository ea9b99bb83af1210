// Package events defines the events emitted on the event bus.
//
// Available event types:
//   - RelayEvent: a relay published a command or a refresh
//   - ConnectAttempt: one broker connection attempt and its outcome
package events
