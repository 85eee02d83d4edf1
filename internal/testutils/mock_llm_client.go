// Package testutils provides deterministic fakes for the ports
// interfaces, used by the application-layer tests.
package testutils

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// Call records one Complete invocation.
type Call struct {
	Prompt  string
	Options map[string]any
}

// MockLLMClient is a scripted ports.LLMClient. Behavior is controlled
// either by the static Response/Err fields or, when set, by ResponseFn.
// A configured Delay respects context cancellation so timeout paths can
// be exercised deterministically. Safe for concurrent use.
type MockLLMClient struct {
	mu sync.Mutex

	// Response and Err are returned by Complete unless ResponseFn is set.
	Response string
	Err      error

	// ResponseFn, when non-nil, computes the result per call.
	ResponseFn func(prompt string, options map[string]any) (string, error)

	// Delay is waited before responding, honoring ctx cancellation.
	Delay time.Duration

	// Model is returned by GetModel.
	Model string

	// Calls records every Complete invocation in order.
	Calls []Call
}

// NewMockLLMClient creates a mock with a default successful response.
func NewMockLLMClient() *MockLLMClient {
	return &MockLLMClient{Response: "mock response", Model: "mock-model"}
}

// Complete implements ports.LLMClient.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{Prompt: prompt, Options: options})
	delay := m.Delay
	fn := m.ResponseFn
	response, err := m.Response, m.Err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if fn != nil {
		return fn(prompt, options)
	}
	if err != nil {
		return "", err
	}
	return response, nil
}

// EstimateTokens implements ports.LLMClient with a fixed 4 chars/token
// heuristic.
func (m *MockLLMClient) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel implements ports.LLMClient.
func (m *MockLLMClient) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Model
}

// CallCount returns the number of recorded Complete invocations.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// StubClientSource is an in-memory ports.ClientSource backed by a map.
type StubClientSource struct {
	Clients map[string]ports.LLMClient
}

// NewStubClientSource creates a source over the given provider clients.
func NewStubClientSource(clients map[string]ports.LLMClient) *StubClientSource {
	return &StubClientSource{Clients: clients}
}

// Client implements ports.ClientSource.
func (s *StubClientSource) Client(provider string) (ports.LLMClient, error) {
	if client, ok := s.Clients[provider]; ok {
		return client, nil
	}
	return nil, fmt.Errorf("provider %q not configured", provider)
}

// Providers implements ports.ClientSource.
func (s *StubClientSource) Providers() []string {
	names := make([]string, 0, len(s.Clients))
	for name := range s.Clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RecordingProgress is a ports.ProgressSink that records every event it
// receives. Safe for concurrent use.
type RecordingProgress struct {
	mu sync.Mutex

	Started  []string
	Finished []domain.Participant
	Rounds   []string
}

// RoundStarted implements ports.ProgressSink.
func (r *RecordingProgress) RoundStarted(round string, tasks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Started = append(r.Started, round)
}

// TaskFinished implements ports.ProgressSink.
func (r *RecordingProgress) TaskFinished(round string, task domain.Participant, outcome domain.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Finished = append(r.Finished, task)
}

// RoundFinished implements ports.ProgressSink.
func (r *RecordingProgress) RoundFinished(round string, result domain.RoundResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rounds = append(r.Rounds, round)
}

// TaskCount returns the number of TaskFinished events recorded.
func (r *RecordingProgress) TaskCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Finished)
}
