package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test", "")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerJSONComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newZerolog(&buf, "relay", "json")
	l.Infof("commanded %s", "closed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "relay", line["component"])
	assert.Equal(t, "commanded closed", line["message"])
	assert.Equal(t, "info", line["level"])
}

func TestConfigureLevel(t *testing.T) {
	defer func() { _ = Configure(Options{Level: "info"}) }()

	require.NoError(t, Configure(Options{Level: "warn"}))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	var buf bytes.Buffer
	l := newZerolog(&buf, "relay", "json")
	l.Infof("hidden")
	assert.Zero(t, buf.Len())

	assert.Error(t, Configure(Options{Level: "loud"}))
}
