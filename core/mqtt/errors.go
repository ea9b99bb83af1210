package mqtt

import (
	"errors"
	"fmt"
)

var (
	// ErrConnect matches every ConnectError with errors.Is.
	ErrConnect = errors.New("mqtt: connect failed")

	// ErrConnectTimeout is the cause recorded when a connect attempt does not
	// complete within the configured timeout.
	ErrConnectTimeout = errors.New("mqtt: connect timed out")

	// ErrNotConnected is returned when publishing on a closed client.
	ErrNotConnected = errors.New("mqtt: client not connected")
)

// ConnectError reports that the broker could not be reached. Timeout is set
// when an attempt timed out, which is fatal without retry; otherwise all
// attempts were exhausted.
type ConnectError struct {
	Attempts int
	Timeout  bool
	Err      error
}

func (e *ConnectError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("mqtt: connect timed out on attempt %d: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("mqtt: connect failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConnect) hold for any ConnectError.
func (e *ConnectError) Is(target error) bool { return target == ErrConnect }
