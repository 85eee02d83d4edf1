package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutMiddlewareAllowsFastRequests(t *testing.T) {
	mock := NewMockCoreLLM()
	mock.Response = "quick"

	wrapped := TimeoutMiddleware(time.Second)(mock)

	response, _, _, err := wrapped.DoRequest(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "quick", response)
}

func TestTimeoutMiddlewareCancelsSlowRequests(t *testing.T) {
	mock := NewMockCoreLLM()
	mock.ResponseDelay = 500 * time.Millisecond

	wrapped := TimeoutMiddleware(20 * time.Millisecond)(mock)

	start := time.Now()
	_, _, _, err := wrapped.DoRequest(context.Background(), "prompt", nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestTimeoutMiddlewareRespectsParentCancellation(t *testing.T) {
	mock := NewMockCoreLLM()
	mock.ResponseDelay = 500 * time.Millisecond

	wrapped := TimeoutMiddleware(time.Minute)(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := wrapped.DoRequest(ctx, "prompt", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTimeoutMiddlewarePassesThroughModel(t *testing.T) {
	mock := NewMockCoreLLM()
	wrapped := TimeoutMiddleware(time.Second)(mock)

	assert.Equal(t, "test-model", wrapped.GetModel())
	wrapped.SetModel("other")
	assert.Equal(t, "other", mock.GetModel())
}
