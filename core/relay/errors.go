package relay

import "errors"

// ErrConfiguration is returned for invalid trigger or relay parameters. It is
// raised at construction time only, never from Process.
var ErrConfiguration = errors.New("relay: invalid configuration")
