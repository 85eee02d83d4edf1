// Package domain contains pure, dependency-free domain models and types
// for the arena engine.
package domain

import (
	"fmt"
	"strings"
)

// Participant identifies one provider/model pair taking part in a round,
// either as a competitor answering the question or as a judge ranking the
// answers. The struct is comparable and is used directly as a map key;
// two participants are equal iff both fields match.
type Participant struct {
	// Provider is the name of the configured provider (e.g. "openai").
	Provider string `json:"provider"`

	// Model is the provider-specific model identifier (e.g. "gpt-4o").
	Model string `json:"model"`
}

// ParseParticipant parses a "provider/model" spec string.
// Both parts must be non-empty.
func ParseParticipant(spec string) (Participant, error) {
	provider, model, ok := strings.Cut(spec, "/")
	if !ok || provider == "" || model == "" {
		return Participant{}, fmt.Errorf("%w: %q (want \"provider/model\")", ErrInvalidParticipant, spec)
	}
	return Participant{Provider: provider, Model: model}, nil
}

// String returns the canonical "provider/model" form.
// This is the name competitors are known by in rankings and leaderboards.
func (p Participant) String() string {
	return p.Provider + "/" + p.Model
}
