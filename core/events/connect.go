package events

import "time"

// ConnectAttempt is published for every broker connection attempt.
type ConnectAttempt struct {
	Broker  string
	Attempt int
	Err     error
	Time    time.Time
}
