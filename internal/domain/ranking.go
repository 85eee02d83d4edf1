package domain

import "fmt"

// Ranking is one judge's ordered preference over competitor names, best
// first. A ranking never contains duplicate names and may be shorter than
// the full competitor set when extraction recovered only part of it.
type Ranking []string

// Contains reports whether name appears anywhere in the ranking.
func (r Ranking) Contains(name string) bool {
	for _, n := range r {
		if n == name {
			return true
		}
	}
	return false
}

// MaxSnippetLen bounds the amount of raw judge output preserved inside an
// ExtractionFailure for diagnostics.
const MaxSnippetLen = 200

// ExtractionFailure records that a judge's raw output could not be turned
// into a usable ranking. It is carried as data in the JudgeReport; an
// unparseable judge never aborts the round.
type ExtractionFailure struct {
	// Reason describes what went wrong during extraction.
	Reason string `json:"reason"`

	// Snippet is a bounded prefix of the raw text for diagnostics.
	Snippet string `json:"snippet"`
}

// NewExtractionFailure builds an ExtractionFailure, truncating the raw
// text to MaxSnippetLen.
func NewExtractionFailure(reason, raw string) *ExtractionFailure {
	if len(raw) > MaxSnippetLen {
		raw = raw[:MaxSnippetLen]
	}
	return &ExtractionFailure{Reason: reason, Snippet: raw}
}

// Error implements the error interface.
func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("ranking extraction failed: %s", e.Reason)
}

// JudgeReport is the per-judge result of the judging stage: either a
// valid Ranking or an ExtractionFailure, never both.
type JudgeReport struct {
	// Judge identifies the judge that produced this report.
	Judge Participant `json:"judge"`

	// Ranking is the extracted ranking when extraction succeeded.
	Ranking Ranking `json:"ranking,omitempty"`

	// Failure is set when the judge's output yielded no usable ranking.
	Failure *ExtractionFailure `json:"failure,omitempty"`
}

// Valid reports whether this report carries a usable ranking.
func (j JudgeReport) Valid() bool { return j.Failure == nil && len(j.Ranking) > 0 }

// LeaderboardEntry is one competitor's final standing.
type LeaderboardEntry struct {
	// Name is the competitor's "provider/model" name.
	Name string `json:"name"`

	// AverageRank is the mean of the 1-based positions assigned by the
	// judges that ranked this competitor. Lower is better.
	AverageRank float64 `json:"average_rank"`

	// Votes is the number of judges whose ranking included this competitor.
	Votes int `json:"votes"`
}

// Leaderboard is the aggregated outcome of one tournament. It is derived
// fresh per aggregation run and never mutated incrementally. Entries are
// ordered by AverageRank ascending with deterministic tie-breaking, so
// identical reports always produce an identical leaderboard.
type Leaderboard struct {
	// Entries holds the ranked competitors, best first. Competitors that
	// received no votes from any judge are excluded entirely.
	Entries []LeaderboardEntry `json:"entries"`

	// JudgesCounted is the number of reports that contributed votes.
	JudgesCounted int `json:"judges_counted"`

	// JudgesSkipped is the number of reports skipped because extraction
	// failed. Skipped judges contribute zero votes, never zero-valued ones.
	JudgesSkipped int `json:"judges_skipped"`
}
