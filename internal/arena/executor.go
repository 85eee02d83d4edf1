package arena

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// Default executor settings.
const (
	// DefaultMaxConcurrency is the default number of concurrent provider calls.
	DefaultMaxConcurrency = 4
	// DefaultCallTimeout is the default wall-clock budget per provider call.
	DefaultCallTimeout = 60 * time.Second
	// DefaultMaxTokens is the default output budget per call.
	DefaultMaxTokens = 800
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.7
)

// PromptBuilder produces the prompt for one task. All tasks of a round
// typically share a single prompt, but the builder receives the
// participant so judge-specific framing stays possible.
type PromptBuilder func(domain.Participant) string

// ExecutorConfig defines the per-round execution parameters.
// All fields are validated during executor creation.
type ExecutorConfig struct {
	// MaxConcurrency bounds the number of provider calls in flight.
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency" validate:"required,min=1,max=64"`

	// CallTimeout is the wall-clock budget for a single provider call.
	// Exceeding it fails that call alone with a timeout outcome.
	CallTimeout time.Duration `yaml:"call_timeout" json:"call_timeout" validate:"required,min=1s,max=10m"`

	// MaxTokens limits the length of each generated completion.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens" validate:"required,min=10,max=16000"`

	// Temperature controls randomness in generation (0.0-2.0).
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0.0,max=2.0"`
}

// DefaultExecutorConfig returns an ExecutorConfig with sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrency: DefaultMaxConcurrency,
		CallTimeout:    DefaultCallTimeout,
		MaxTokens:      DefaultMaxTokens,
		Temperature:    DefaultTemperature,
	}
}

// UnmarshalYAML decodes the round block. The call timeout accepts a Go
// duration string ("90s") or a bare integer number of seconds. Absent
// fields keep whatever values the receiver already holds, so defaults
// seeded before decoding survive a partial block.
func (c *ExecutorConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		MaxConcurrency *int     `yaml:"max_concurrency"`
		CallTimeout    string   `yaml:"call_timeout"`
		MaxTokens      *int     `yaml:"max_tokens"`
		Temperature    *float64 `yaml:"temperature"`
	}
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}

	if r.MaxConcurrency != nil {
		c.MaxConcurrency = *r.MaxConcurrency
	}
	if r.MaxTokens != nil {
		c.MaxTokens = *r.MaxTokens
	}
	if r.Temperature != nil {
		c.Temperature = *r.Temperature
	}
	if r.CallTimeout != "" {
		if secs, err := strconv.Atoi(r.CallTimeout); err == nil {
			c.CallTimeout = time.Duration(secs) * time.Second
		} else {
			d, err := time.ParseDuration(r.CallTimeout)
			if err != nil {
				return fmt.Errorf("invalid call_timeout %q: %w", r.CallTimeout, err)
			}
			c.CallTimeout = d
		}
	}
	return nil
}

// Executor runs a set of provider calls sharing one prompt with bounded
// parallelism and returns a complete map of task to outcome. One task's
// failure never cancels, delays, or corrupts another task's outcome;
// the round returns only after every submitted task is terminal.
// The executor is stateless and safe for concurrent rounds.
type Executor struct {
	clients  ports.ClientSource
	config   ExecutorConfig
	progress ports.ProgressSink
}

// NewExecutor creates an Executor over the given client source.
// A nil progress sink is replaced with a no-op sink.
func NewExecutor(clients ports.ClientSource, config ExecutorConfig, progress ports.ProgressSink) (*Executor, error) {
	if clients == nil {
		return nil, fmt.Errorf("client source cannot be nil")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("executor configuration validation failed: %w", err)
	}
	if progress == nil {
		progress = NopProgress{}
	}
	return &Executor{clients: clients, config: config, progress: progress}, nil
}

// RunRound executes one task per distinct participant and returns an
// outcome for every one of them. Duplicate tasks are collapsed to set
// semantics before execution, so |result| always equals the number of
// distinct tasks. RunRound returns an error only for an empty task set;
// per-task failures are data in the result.
func (e *Executor) RunRound(
	ctx context.Context,
	round string,
	tasks []domain.Participant,
	build PromptBuilder,
) (domain.RoundResult, error) {
	if len(tasks) == 0 {
		return nil, domain.ErrNoTasks
	}

	seen := make(map[domain.Participant]struct{}, len(tasks))
	unique := make([]domain.Participant, 0, len(tasks))
	for _, task := range tasks {
		if _, dup := seen[task]; dup {
			continue
		}
		seen[task] = struct{}{}
		unique = append(unique, task)
	}

	e.progress.RoundStarted(round, len(unique))

	result := make(domain.RoundResult, len(unique))
	var mu sync.Mutex

	// A plain group rather than WithContext: a failing task must not
	// cancel its siblings, so workers never return errors.
	var g errgroup.Group
	g.SetLimit(e.config.MaxConcurrency)

	for _, task := range unique {
		g.Go(func() error {
			outcome := e.invoke(ctx, task, build)
			mu.Lock()
			result[task] = outcome
			mu.Unlock()
			e.progress.TaskFinished(round, task, outcome)
			return nil
		})
	}

	// Wait always returns nil here; the barrier is what matters.
	_ = g.Wait()

	e.progress.RoundFinished(round, result)
	return result, nil
}

// invoke performs a single provider call and converts any failure into a
// terminal outcome. It never returns an error and never panics on one.
func (e *Executor) invoke(ctx context.Context, task domain.Participant, build PromptBuilder) domain.Outcome {
	// Tasks that have not started when the process is shutting down are
	// abandoned without touching the provider.
	if ctx.Err() != nil {
		return domain.Failed(domain.ErrorKindUnavailable, "cancelled", 0)
	}

	client, err := e.clients.Client(task.Provider)
	if err != nil {
		return domain.Failed(domain.ErrorKindUnavailable, err.Error(), 0)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
	defer cancel()

	options := map[string]any{
		"model":       task.Model,
		"temperature": e.config.Temperature,
		"max_tokens":  e.config.MaxTokens,
	}

	start := time.Now()
	text, err := client.Complete(callCtx, build(task), options)
	latency := time.Since(start)

	if err != nil {
		return e.classify(ctx, err, latency)
	}
	return domain.Succeeded(text, latency)
}

// classify maps a call error onto the failure taxonomy. Parent-context
// cancellation wins over per-call classification so an abandoned call is
// not mistaken for a provider timeout.
func (e *Executor) classify(parent context.Context, err error, latency time.Duration) domain.Outcome {
	if parent.Err() != nil {
		return domain.Failed(domain.ErrorKindUnavailable, "cancelled", latency)
	}

	kind := domain.KindOf(err)
	if kind == domain.ErrorKindUnknown {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			kind = domain.ErrorKindTimeout
		case errors.Is(err, context.Canceled):
			kind = domain.ErrorKindUnavailable
		}
	}
	return domain.Failed(kind, err.Error(), latency)
}
