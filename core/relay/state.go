package relay

import (
	"fmt"
	"time"
)

// Position is the commanded position of the relay contacts.
type Position int

const (
	// Open de-energizes the load (stopped).
	Open Position = iota
	// Closed energizes the load (running).
	Closed
)

func (p Position) String() string {
	switch p {
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// RelayState is an immutable snapshot of a commanded position and the time it
// was set. A new value is created on every transition.
type RelayState struct {
	Position  Position
	UpdatedAt time.Time
}

// IsRunning reports whether the relay is commanded closed.
func (s RelayState) IsRunning() bool { return s.Position == Closed }

func (s RelayState) String() string {
	return fmt.Sprintf("%s - %s", s.Position, s.UpdatedAt.Format(time.RFC3339))
}

// Clock returns the current time. Triggers and relays take one so tests can
// control time.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
