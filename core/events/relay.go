package events

import "time"

// RelayKind tells why a relay published.
type RelayKind string

const (
	// KindCommand is a Start or Stop, including the initial command.
	KindCommand RelayKind = "command"
	// KindRefresh re-publishes an unchanged position.
	KindRefresh RelayKind = "refresh"
)

// RelayEvent is published after every relay publish.
type RelayEvent struct {
	Topic   string
	Kind    RelayKind
	Running bool
	Time    time.Time
	Err     error
}
