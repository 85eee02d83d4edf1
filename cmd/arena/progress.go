package main

import (
	"github.com/rs/zerolog/log"

	"github.com/ahrav/go-arena/internal/domain"
)

// logProgress renders round progress through the global logger.
type logProgress struct{}

func (logProgress) RoundStarted(round string, tasks int) {
	log.Info().Str("round", round).Int("tasks", tasks).Msg("round started")
}

func (logProgress) TaskFinished(round string, task domain.Participant, outcome domain.Outcome) {
	evt := log.Info().
		Str("round", round).
		Str("participant", task.String()).
		Dur("latency", outcome.Latency)
	if !outcome.OK() {
		evt = log.Warn().
			Str("round", round).
			Str("participant", task.String()).
			Str("kind", outcome.Failure.Kind.String()).
			Str("detail", outcome.Failure.Detail)
	}
	evt.Msg("task finished")
}

func (logProgress) RoundFinished(round string, result domain.RoundResult) {
	log.Info().
		Str("round", round).
		Int("succeeded", len(result.Successes())).
		Int("failed", result.FailureCount()).
		Msg("round finished")
}
