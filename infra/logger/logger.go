package logger

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/relayctl/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards all output.
type NopLogger = corelogger.Nop

// Options controls the process-wide logger output.
type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Format is json or console. Empty defers to APP_ENV: "dev" selects console.
	Format string
}

var (
	mu      sync.RWMutex
	current = Options{Level: "info"}
)

// Configure sets level and format for loggers created afterwards.
func Configure(o Options) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(o.Level))
	if err != nil {
		return err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	mu.Lock()
	current = o
	mu.Unlock()
	return nil
}

// New returns a Logger for the given component.
func New(component string) Logger {
	mu.RLock()
	o := current
	mu.RUnlock()
	return NewZerologLogger(component, o.Format)
}
