package llm

// config.go provides parsing and validation utilities for the generic
// option maps passed through the provider-invocation boundary.

import (
	"fmt"
	"net/url"
	"time"
)

// Valid ranges for common LLM parameters, shared across providers.
const (
	// DefaultMaxTokens is the fallback output budget when a call does not
	// specify one.
	DefaultMaxTokens = 1000
	// MinTemperature is the minimum allowed value for temperature.
	MinTemperature = 0.0
	// MaxTemperature is the maximum allowed value for temperature.
	// Set to 2.0 to accommodate providers like Gemini.
	MaxTemperature = 2.0
	// MinTopP is the minimum allowed value for Top-P sampling.
	MinTopP = 0.0
	// MaxTopP is the maximum allowed value for Top-P sampling.
	MaxTopP = 1.0
	// MinPenalty is the minimum allowed frequency or presence penalty.
	MinPenalty = -2.0
	// MaxPenalty is the maximum allowed frequency or presence penalty.
	MaxPenalty = 2.0
	// MinTimeout is the minimum allowed duration for a request timeout.
	MinTimeout = 1 * time.Second
	// MaxTimeout is the maximum allowed duration for a request timeout.
	MaxTimeout = 10 * time.Minute
)

// ExtractOptionalInt extracts an integer value from an options map.
// Returns defaultVal if the key doesn't exist, the value is not an int,
// or the validator rejects it.
func ExtractOptionalInt(opts map[string]any, key string, defaultVal int, validator func(int) bool) int {
	if opts == nil {
		return defaultVal
	}
	val, ok := opts[key]
	if !ok {
		return defaultVal
	}
	intVal, ok := val.(int)
	if !ok {
		return defaultVal
	}
	if validator != nil && !validator(intVal) {
		return defaultVal
	}
	return intVal
}

// ExtractOptionalString extracts a string value from an options map.
// Returns defaultVal if the key doesn't exist, the value is not a string,
// or the validator rejects it.
func ExtractOptionalString(opts map[string]any, key string, defaultVal string, validator func(string) bool) string {
	if opts == nil {
		return defaultVal
	}
	val, ok := opts[key]
	if !ok {
		return defaultVal
	}
	strVal, ok := val.(string)
	if !ok {
		return defaultVal
	}
	if validator != nil && !validator(strVal) {
		return defaultVal
	}
	return strVal
}

// ExtractOptionalFloat64 extracts a float64 value from an options map.
// Returns defaultVal if the key doesn't exist, the value is not a float64,
// or the validator rejects it.
func ExtractOptionalFloat64(opts map[string]any, key string, defaultVal float64, validator func(float64) bool) float64 {
	if opts == nil {
		return defaultVal
	}
	val, ok := opts[key]
	if !ok {
		return defaultVal
	}
	floatVal, ok := val.(float64)
	if !ok {
		return defaultVal
	}
	if validator != nil && !validator(floatVal) {
		return defaultVal
	}
	return floatVal
}

// IsPositiveInt returns true if the integer is greater than 0.
func IsPositiveInt(val int) bool { return val > 0 }

// IsNonEmptyString returns true if the string is not empty.
func IsNonEmptyString(val string) bool { return val != "" }

// IsValidTemperature returns true if the float is within [MinTemperature, MaxTemperature].
func IsValidTemperature(val float64) bool { return val >= MinTemperature && val <= MaxTemperature }

// IsValidTopP returns true if the float is within [MinTopP, MaxTopP].
func IsValidTopP(val float64) bool { return val >= MinTopP && val <= MaxTopP }

// ValidateBaseURL validates and normalizes a base URL string.
// An empty string is valid and signifies that the provider default
// endpoint should be used.
func ValidateBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL scheme must be http or https, got: %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must include a host")
	}
	return parsed.String(), nil
}

// ValidateTimeout clamps the timeout to [MinTimeout, MaxTimeout].
// A zero or negative timeout returns zero, meaning the system default.
func ValidateTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if timeout < MinTimeout {
		return MinTimeout
	}
	if timeout > MaxTimeout {
		return MaxTimeout
	}
	return timeout
}

// SafeFloat32 converts a numeric value of type any to a float32.
// The conversion fails if the value is out of the float32 range.
func SafeFloat32(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		if v > 3.4e38 || v < -3.4e38 {
			return 0, false
		}
		return float32(v), true
	case int:
		return float32(v), true
	default:
		return 0, false
	}
}

// ClampFloat64 clamps a float64 value to the [min, max] range.
func ClampFloat64(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampInt clamps an int value to the [min, max] range.
func ClampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
