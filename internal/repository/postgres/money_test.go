package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric_Success(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"whole", "100", "100"},
		{"scale two", "100.50", "100.5"},
		{"scale four", "0.9999", "0.9999"},
		{"zero with decimals", "0.0000", "0"},
		{"with whitespace", "  50.25  ", "50.25"},
		{"negative amount", "-10.50", "-10.5"},
		{"large amount", "99999999999999.9999", "99999999999999.9999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseNumeric(tt.input)
			require.NoError(t, err)
			assert.True(t, result.Equal(decimal.RequireFromString(tt.expected)), "got %s", result)
		})
	}
}

func TestParseNumeric_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"invalid format", "abc"},
		{"special characters", "$100.00"},
		{"multiple decimals", "10.5.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseNumeric(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestNumeric_RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "12.3456", "-7.5", "1000000.0001"} {
		t.Run(s, func(t *testing.T) {
			original := decimal.RequireFromString(s)
			back, err := parseNumeric(formatNumeric(original))
			require.NoError(t, err)
			assert.True(t, original.Equal(back))
		})
	}
}
