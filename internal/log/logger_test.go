package log

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := WithComponent(New(Config{Level: "debug", Output: &buf}), "loader")
	l.Debug().Str("prefix", "mdi").Msg("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "loader", entry["component"])
	assert.Equal(t, "mdi", entry["prefix"])
	assert.Equal(t, "loaded", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	t.Setenv("LOG_LEVEL", "")
	l = New(Config{Level: "nonsense", Output: &buf})
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewEnvLevel(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("LOG_LEVEL", "error")
	l := New(Config{Output: &buf})
	l.Warn().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Console: true})
	l.Info().Str("file", "out.css").Msg("wrote")
	assert.Contains(t, buf.String(), "wrote")
	assert.Contains(t, buf.String(), "file=")
	assert.NotContains(t, buf.String(), "{")
}
