package log

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	info := newLogger(&buf, false)
	assert.Equal(t, zerolog.InfoLevel, info.GetLevel())
	info.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	info.Info().Str("session_id", "abc").Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "abc")

	debug := newLogger(&buf, true)
	assert.Equal(t, zerolog.DebugLevel, debug.GetLevel())
}

func TestNewLogger_DebugEnv(t *testing.T) {
	t.Setenv("DEBUG", "true")
	assert.Equal(t, zerolog.DebugLevel, NewLogger().GetLevel())

	t.Setenv("DEBUG", "")
	assert.Equal(t, zerolog.InfoLevel, NewLogger().GetLevel())
}
