// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-arena/internal/domain"
)

// LLMClient defines the interface for interacting with Large Language
// Model providers.
// Implementations handle provider-specific details like authentication,
// request formatting, and response parsing; every transport-level failure
// is converted into a classified error, never a panic.
type LLMClient interface {
	// Complete sends a completion request to the LLM provider.
	// It returns the generated text and any error encountered.
	//
	// The options map allows flexibility for different providers without
	// changing the interface. Common options include:
	//   - "temperature": float64 (0.0-1.0)
	//   - "max_tokens": int
	//   - "model": string (overrides the client's default model)
	//   - "system": string (system prompt)
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens calculates the approximate token count for a given
	// text. The estimation method may vary by provider.
	EstimateTokens(text string) (int, error)

	// GetModel returns the default model identifier used by this client.
	GetModel() string
}

// ClientSource provides read-only access to the provider clients built at
// startup. The registry behind this interface is never mutated after
// construction, so implementations need no locking during rounds.
type ClientSource interface {
	// Client returns the client for the named provider, or an error when
	// the provider was not configured or failed to construct.
	Client(provider string) (LLMClient, error)

	// Providers returns the names of all usable providers in sorted order.
	Providers() []string
}

// ProgressSink observes round execution. Implementations render progress
// to a console or log; no core logic depends on their behavior.
type ProgressSink interface {
	// RoundStarted is called once before any task of a round runs.
	RoundStarted(round string, tasks int)

	// TaskFinished is called once per task as it reaches a terminal state.
	TaskFinished(round string, task domain.Participant, outcome domain.Outcome)

	// RoundFinished is called once after every task is terminal.
	RoundFinished(round string, result domain.RoundResult)
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations integrate with observability backends such as
// Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
