package llm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseProviderModelAccess(t *testing.T) {
	var bp BaseProvider
	bp.SetModel("gpt-4o")
	assert.Equal(t, "gpt-4o", bp.GetModel())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bp.SetModel("concurrent")
		}()
		go func() {
			defer wg.Done()
			_ = bp.GetModel()
		}()
	}
	wg.Wait()
}

func TestParseRequestOptions(t *testing.T) {
	opts := map[string]any{
		"max_tokens":  750,
		"model":       "gpt-4.1",
		"temperature": 0.3,
		"top_p":       0.9,
		"system":      "be brief",
		"top_k":       20,
	}

	parsed := ParseRequestOptions(opts, "default-model")

	assert.Equal(t, 750, parsed.MaxTokens)
	assert.Equal(t, "gpt-4.1", parsed.Model)
	require.NotNil(t, parsed.Temperature)
	assert.Equal(t, 0.3, *parsed.Temperature)
	require.NotNil(t, parsed.TopP)
	assert.Equal(t, 0.9, *parsed.TopP)
	assert.Equal(t, "be brief", parsed.System)
	assert.Equal(t, map[string]any{"top_k": 20}, parsed.Extra)
}

func TestParseRequestOptionsDefaults(t *testing.T) {
	parsed := ParseRequestOptions(nil, "default-model")

	assert.Equal(t, DefaultMaxTokens, parsed.MaxTokens)
	assert.Equal(t, "default-model", parsed.Model)
	assert.Nil(t, parsed.Temperature)
	assert.Nil(t, parsed.TopP)
	assert.Empty(t, parsed.System)
	assert.Empty(t, parsed.Extra)
}

func TestParseRequestOptionsRejectsInvalid(t *testing.T) {
	parsed := ParseRequestOptions(map[string]any{
		"max_tokens":  -10,
		"temperature": 9.0,
		"top_p":       2.0,
	}, "default-model")

	assert.Equal(t, DefaultMaxTokens, parsed.MaxTokens)
	assert.Nil(t, parsed.Temperature)
	assert.Nil(t, parsed.TopP)
}

func TestTokenCounter(t *testing.T) {
	tc := NewTokenCounter()

	assert.Equal(t, 0, tc.EstimateTokens(""))
	assert.Equal(t, 3, tc.EstimateTokens("twelve chars"))

	// An actual count from the provider wins over the estimate.
	assert.Equal(t, 99, tc.GetTokenCount(99, "twelve chars"))
	assert.Equal(t, 3, tc.GetTokenCount(0, "twelve chars"))
	assert.Equal(t, 3, tc.GetTokenCount(-1, "twelve chars"))
}
