package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("", "development"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("", "production"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN", "production"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose", "development"))
}

func TestComponent_EscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Out: &buf})

	cl := l.Component("ledger")
	cl.Info().Str("op", "create").Msg("registro creado")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "create", entry["op"])
	assert.Equal(t, "registro creado", entry["message"])
}
