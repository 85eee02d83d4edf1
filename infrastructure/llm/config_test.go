package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOptionalInt(t *testing.T) {
	opts := map[string]any{"max_tokens": 500, "wrong_type": "hello", "negative": -5}

	assert.Equal(t, 500, ExtractOptionalInt(opts, "max_tokens", 100, IsPositiveInt))
	assert.Equal(t, 100, ExtractOptionalInt(opts, "missing", 100, IsPositiveInt))
	assert.Equal(t, 100, ExtractOptionalInt(opts, "wrong_type", 100, IsPositiveInt))
	assert.Equal(t, 100, ExtractOptionalInt(opts, "negative", 100, IsPositiveInt))
	assert.Equal(t, 100, ExtractOptionalInt(nil, "max_tokens", 100, IsPositiveInt))
}

func TestExtractOptionalString(t *testing.T) {
	opts := map[string]any{"model": "gpt-4o", "empty": "", "wrong_type": 42}

	assert.Equal(t, "gpt-4o", ExtractOptionalString(opts, "model", "default", IsNonEmptyString))
	assert.Equal(t, "default", ExtractOptionalString(opts, "missing", "default", IsNonEmptyString))
	assert.Equal(t, "default", ExtractOptionalString(opts, "empty", "default", IsNonEmptyString))
	assert.Equal(t, "default", ExtractOptionalString(opts, "wrong_type", "default", IsNonEmptyString))
}

func TestExtractOptionalFloat64(t *testing.T) {
	opts := map[string]any{"temperature": 0.8, "too_hot": 5.0, "wrong_type": "warm"}

	assert.Equal(t, 0.8, ExtractOptionalFloat64(opts, "temperature", 0.5, IsValidTemperature))
	assert.Equal(t, 0.5, ExtractOptionalFloat64(opts, "too_hot", 0.5, IsValidTemperature))
	assert.Equal(t, 0.5, ExtractOptionalFloat64(opts, "wrong_type", 0.5, IsValidTemperature))
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		wantError bool
	}{
		{"empty is valid", "", false},
		{"https URL", "https://api.example.com/v1", false},
		{"http URL", "http://localhost:8080", false},
		{"missing scheme", "api.example.com", true},
		{"unsupported scheme", "ftp://api.example.com", true},
		{"missing host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateBaseURL(tt.baseURL)
			if tt.wantError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), ValidateTimeout(0))
	assert.Equal(t, time.Duration(0), ValidateTimeout(-time.Second))
	assert.Equal(t, MinTimeout, ValidateTimeout(time.Millisecond))
	assert.Equal(t, MaxTimeout, ValidateTimeout(time.Hour))
	assert.Equal(t, 30*time.Second, ValidateTimeout(30*time.Second))
}

func TestSafeFloat32(t *testing.T) {
	v, ok := SafeFloat32(0.7)
	require.True(t, ok)
	assert.InDelta(t, 0.7, float64(v), 1e-6)

	v, ok = SafeFloat32(float32(1.5))
	require.True(t, ok)
	assert.Equal(t, float32(1.5), v)

	v, ok = SafeFloat32(3)
	require.True(t, ok)
	assert.Equal(t, float32(3), v)

	_, ok = SafeFloat32(1e39)
	assert.False(t, ok)

	_, ok = SafeFloat32("not a number")
	assert.False(t, ok)
}

func TestClampHelpers(t *testing.T) {
	assert.Equal(t, 1.0, ClampFloat64(0.5, 1.0, 2.0))
	assert.Equal(t, 2.0, ClampFloat64(3.0, 1.0, 2.0))
	assert.Equal(t, 1.5, ClampFloat64(1.5, 1.0, 2.0))

	assert.Equal(t, 1, ClampInt(0, 1, 40))
	assert.Equal(t, 40, ClampInt(99, 1, 40))
	assert.Equal(t, 20, ClampInt(20, 1, 40))
}
