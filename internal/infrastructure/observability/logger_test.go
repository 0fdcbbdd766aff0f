package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for input, expected := range tests {
		assert.Equal(t, expected, parseLogLevel(input), input)
	}
}

func TestInitLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger("info", &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("payment_id", "p-1").Msg("refund dispatched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "refund dispatched", entry["message"])
	assert.Equal(t, "p-1", entry["payment_id"])
	assert.Contains(t, entry, "time")
}
