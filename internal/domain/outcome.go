package domain

import (
	"fmt"
	"time"
)

// ErrorKind classifies a per-call failure into a closed taxonomy.
// Every transport-level error is mapped onto exactly one kind at the
// provider boundary; nothing above that boundary inspects raw SDK errors.
type ErrorKind int

const (
	// ErrorKindUnknown covers failures that fit no other category.
	ErrorKindUnknown ErrorKind = iota
	// ErrorKindAuth indicates an authentication or authorization failure.
	ErrorKindAuth
	// ErrorKindRateLimited indicates the provider rejected the call due to
	// rate limiting.
	ErrorKindRateLimited
	// ErrorKindTimeout indicates the call exceeded its wall-clock budget.
	ErrorKindTimeout
	// ErrorKindMalformed indicates a bad request or an unparseable response.
	ErrorKindMalformed
	// ErrorKindUnavailable indicates the provider could not be reached,
	// returned a server error, or the call was abandoned by cancellation.
	ErrorKindUnavailable
)

// String returns a stable, lowercase name for the kind, suitable for
// log fields and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindAuth:
		return "auth"
	case ErrorKindRateLimited:
		return "rate_limited"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindMalformed:
		return "malformed"
	case ErrorKindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// CallFailure describes why a single provider call failed.
// It is data, not control flow: failures are collected into the
// RoundResult alongside successes and never abort a round.
type CallFailure struct {
	// Kind is the classified failure category.
	Kind ErrorKind `json:"kind"`

	// Detail is a human-readable description of the underlying error.
	Detail string `json:"detail"`
}

// Error implements the error interface so a CallFailure can travel
// through error-shaped plumbing when needed.
func (f *CallFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Outcome is the terminal result of one provider call within a round.
// Exactly one of Text or Failure is meaningful: a nil Failure means
// success. Outcomes are produced exactly once per participant per round.
type Outcome struct {
	// Text is the completion text returned by the provider on success.
	Text string `json:"text,omitempty"`

	// Latency is the observed wall-clock duration of the call.
	Latency time.Duration `json:"latency"`

	// Failure is set when the call did not produce a usable completion.
	Failure *CallFailure `json:"failure,omitempty"`
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool { return o.Failure == nil }

// Succeeded constructs a success outcome.
func Succeeded(text string, latency time.Duration) Outcome {
	return Outcome{Text: text, Latency: latency}
}

// Failed constructs a failure outcome.
func Failed(kind ErrorKind, detail string, latency time.Duration) Outcome {
	return Outcome{Latency: latency, Failure: &CallFailure{Kind: kind, Detail: detail}}
}

// RoundResult maps every participant submitted to a round to its terminal
// outcome. Completeness is mandatory: one entry per submitted task, no
// missing and no duplicate keys. Insertion order is irrelevant.
type RoundResult map[Participant]Outcome

// Successes returns the participants whose calls succeeded, in no
// particular order.
func (r RoundResult) Successes() []Participant {
	out := make([]Participant, 0, len(r))
	for p, o := range r {
		if o.OK() {
			out = append(out, p)
		}
	}
	return out
}

// FailureCount returns the number of failed outcomes in the round.
func (r RoundResult) FailureCount() int {
	n := 0
	for _, o := range r {
		if !o.OK() {
			n++
		}
	}
	return n
}
