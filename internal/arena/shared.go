// Package arena implements the orchestration core: the bounded fan-out/
// fan-in round executor, ranking extraction from free-form judge output,
// rank aggregation into a leaderboard, and the tournament that wires the
// rounds together.
package arena

import (
	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-arena/internal/domain"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// NopProgress is a ProgressSink that discards all events. It is used as
// the default when no sink is configured.
type NopProgress struct{}

// RoundStarted implements ports.ProgressSink.
func (NopProgress) RoundStarted(string, int) {}

// TaskFinished implements ports.ProgressSink.
func (NopProgress) TaskFinished(string, domain.Participant, domain.Outcome) {}

// RoundFinished implements ports.ProgressSink.
func (NopProgress) RoundFinished(string, domain.RoundResult) {}
