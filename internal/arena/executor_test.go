package arena

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
	"github.com/ahrav/go-arena/internal/testutils"
)

// classifiedError is a test error carrying a pre-classified kind, the
// way provider adapter errors do.
type classifiedError struct {
	kind domain.ErrorKind
	msg  string
}

func (e *classifiedError) Error() string         { return e.msg }
func (e *classifiedError) Kind() domain.ErrorKind { return e.kind }

func fastConfig() ExecutorConfig {
	cfg := DefaultExecutorConfig()
	cfg.CallTimeout = time.Second
	return cfg
}

func TestNewExecutor(t *testing.T) {
	source := testutils.NewStubClientSource(nil)

	tests := []struct {
		name      string
		clients   ports.ClientSource
		config    ExecutorConfig
		wantError bool
		errorMsg  string
	}{
		{
			name:    "valid configuration",
			clients: source,
			config:  DefaultExecutorConfig(),
		},
		{
			name:      "nil client source",
			clients:   nil,
			config:    DefaultExecutorConfig(),
			wantError: true,
			errorMsg:  "client source cannot be nil",
		},
		{
			name:    "zero concurrency",
			clients: source,
			config: ExecutorConfig{
				MaxConcurrency: 0,
				CallTimeout:    time.Minute,
				MaxTokens:      800,
			},
			wantError: true,
			errorMsg:  "validation failed",
		},
		{
			name:    "timeout below minimum",
			clients: source,
			config: ExecutorConfig{
				MaxConcurrency: 4,
				CallTimeout:    time.Millisecond,
				MaxTokens:      800,
			},
			wantError: true,
			errorMsg:  "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, err := NewExecutor(tt.clients, tt.config, nil)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, exec)
		})
	}
}

func TestRunRoundCompleteness(t *testing.T) {
	source := testutils.NewStubClientSource(map[string]ports.LLMClient{
		"alpha": &testutils.MockLLMClient{Response: "from alpha"},
		"beta":  &testutils.MockLLMClient{Response: "from beta"},
	})
	progress := &testutils.RecordingProgress{}
	exec, err := NewExecutor(source, fastConfig(), progress)
	require.NoError(t, err)

	tasks := []domain.Participant{
		{Provider: "alpha", Model: "m1"},
		{Provider: "alpha", Model: "m2"},
		{Provider: "beta", Model: "m1"},
	}

	result, err := exec.RunRound(context.Background(), "answer", tasks, func(domain.Participant) string {
		return "prompt"
	})
	require.NoError(t, err)

	require.Len(t, result, len(tasks))
	for _, task := range tasks {
		outcome, ok := result[task]
		require.True(t, ok, "missing outcome for %s", task)
		assert.True(t, outcome.OK())
	}
	assert.Equal(t, result[tasks[0]].Text, "from alpha")
	assert.Equal(t, result[tasks[2]].Text, "from beta")

	assert.Equal(t, []string{"answer"}, progress.Started)
	assert.Equal(t, []string{"answer"}, progress.Rounds)
	assert.Equal(t, len(tasks), progress.TaskCount())
}

func TestRunRoundDeduplicatesTasks(t *testing.T) {
	client := testutils.NewMockLLMClient()
	source := testutils.NewStubClientSource(map[string]ports.LLMClient{"alpha": client})
	exec, err := NewExecutor(source, fastConfig(), nil)
	require.NoError(t, err)

	task := domain.Participant{Provider: "alpha", Model: "m1"}
	result, err := exec.RunRound(context.Background(), "answer",
		[]domain.Participant{task, task, task},
		func(domain.Participant) string { return "prompt" })
	require.NoError(t, err)

	assert.Len(t, result, 1)
	assert.Equal(t, 1, client.CallCount())
}

func TestRunRoundEmptyTasks(t *testing.T) {
	exec, err := NewExecutor(testutils.NewStubClientSource(nil), fastConfig(), nil)
	require.NoError(t, err)

	_, err = exec.RunRound(context.Background(), "answer", nil,
		func(domain.Participant) string { return "prompt" })
	require.ErrorIs(t, err, domain.ErrNoTasks)
}

// TestRunRoundIsolation verifies that one task failing, one hanging past
// its timeout, and one targeting a missing provider leave the remaining
// tasks' outcomes untouched.
func TestRunRoundIsolation(t *testing.T) {
	source := testutils.NewStubClientSource(map[string]ports.LLMClient{
		"good": &testutils.MockLLMClient{Response: "fine"},
		"auth": &testutils.MockLLMClient{
			Err: &classifiedError{kind: domain.ErrorKindAuth, msg: "invalid api key"},
		},
		"slow": &testutils.MockLLMClient{Response: "late", Delay: 5 * time.Second},
	})
	exec, err := NewExecutor(source, fastConfig(), nil)
	require.NoError(t, err)

	good1 := domain.Participant{Provider: "good", Model: "m1"}
	good2 := domain.Participant{Provider: "good", Model: "m2"}
	bad := domain.Participant{Provider: "auth", Model: "m1"}
	slow := domain.Participant{Provider: "slow", Model: "m1"}
	missing := domain.Participant{Provider: "ghost", Model: "m1"}

	result, err := exec.RunRound(context.Background(), "answer",
		[]domain.Participant{good1, bad, slow, missing, good2},
		func(domain.Participant) string { return "prompt" })
	require.NoError(t, err)
	require.Len(t, result, 5)

	assert.True(t, result[good1].OK())
	assert.Equal(t, "fine", result[good1].Text)
	assert.True(t, result[good2].OK())

	require.False(t, result[bad].OK())
	assert.Equal(t, domain.ErrorKindAuth, result[bad].Failure.Kind)
	assert.Contains(t, result[bad].Failure.Detail, "invalid api key")

	require.False(t, result[slow].OK())
	assert.Equal(t, domain.ErrorKindTimeout, result[slow].Failure.Kind)
	assert.GreaterOrEqual(t, result[slow].Latency, time.Second)

	require.False(t, result[missing].OK())
	assert.Equal(t, domain.ErrorKindUnavailable, result[missing].Failure.Kind)
	assert.Contains(t, result[missing].Failure.Detail, "ghost")
}

func TestRunRoundParentCancellation(t *testing.T) {
	source := testutils.NewStubClientSource(map[string]ports.LLMClient{
		"alpha": &testutils.MockLLMClient{Response: "ok", Delay: 5 * time.Second},
	})
	exec, err := NewExecutor(source, fastConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := exec.RunRound(ctx, "answer",
		[]domain.Participant{{Provider: "alpha", Model: "m1"}},
		func(domain.Participant) string { return "prompt" })
	require.NoError(t, err)

	outcome := result[domain.Participant{Provider: "alpha", Model: "m1"}]
	require.False(t, outcome.OK())
	assert.Equal(t, domain.ErrorKindUnavailable, outcome.Failure.Kind)
	assert.Equal(t, "cancelled", outcome.Failure.Detail)
}

func TestRunRoundConcurrencyBound(t *testing.T) {
	var current, peak int64
	client := &testutils.MockLLMClient{
		ResponseFn: func(string, map[string]any) (string, error) {
			n := atomic.AddInt64(&current, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt64(&current, -1)
			return "ok", nil
		},
	}
	source := testutils.NewStubClientSource(map[string]ports.LLMClient{"alpha": client})

	cfg := fastConfig()
	cfg.MaxConcurrency = 2
	exec, err := NewExecutor(source, cfg, nil)
	require.NoError(t, err)

	tasks := make([]domain.Participant, 8)
	for i := range tasks {
		tasks[i] = domain.Participant{Provider: "alpha", Model: string(rune('a' + i))}
	}

	result, err := exec.RunRound(context.Background(), "answer", tasks,
		func(domain.Participant) string { return "prompt" })
	require.NoError(t, err)

	assert.Len(t, result, len(tasks))
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestRunRoundPassesCallOptions(t *testing.T) {
	client := testutils.NewMockLLMClient()
	source := testutils.NewStubClientSource(map[string]ports.LLMClient{"alpha": client})

	cfg := fastConfig()
	cfg.Temperature = 0.3
	cfg.MaxTokens = 512
	exec, err := NewExecutor(source, cfg, nil)
	require.NoError(t, err)

	_, err = exec.RunRound(context.Background(), "answer",
		[]domain.Participant{{Provider: "alpha", Model: "m-custom"}},
		func(domain.Participant) string { return "prompt" })
	require.NoError(t, err)

	require.Len(t, client.Calls, 1)
	opts := client.Calls[0].Options
	assert.Equal(t, "m-custom", opts["model"])
	assert.Equal(t, 0.3, opts["temperature"])
	assert.Equal(t, 512, opts["max_tokens"])
}

func TestClassifyFallsBackToContextErrors(t *testing.T) {
	exec, err := NewExecutor(testutils.NewStubClientSource(nil), fastConfig(), nil)
	require.NoError(t, err)

	outcome := exec.classify(context.Background(), context.DeadlineExceeded, time.Second)
	assert.Equal(t, domain.ErrorKindTimeout, outcome.Failure.Kind)

	outcome = exec.classify(context.Background(), errors.New("wire snapped"), 0)
	assert.Equal(t, domain.ErrorKindUnknown, outcome.Failure.Kind)
}
