package arena

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-arena/internal/domain"
)

var knownNames = []string{
	"openai/gpt-4o",
	"anthropic/claude-4-sonnet",
	"google/gemini-2.5-flash",
}

func newTestExtractor() *Extractor {
	return NewExtractor(zerolog.Nop())
}

func TestExtractRanking(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		want        domain.Ranking
		wantFailure bool
		reason      string
	}{
		{
			name: "clean array",
			raw:  `["openai/gpt-4o", "anthropic/claude-4-sonnet"]`,
			want: domain.Ranking{"openai/gpt-4o", "anthropic/claude-4-sonnet"},
		},
		{
			name: "clean ranking object",
			raw:  `{"ranking": ["google/gemini-2.5-flash", "openai/gpt-4o"]}`,
			want: domain.Ranking{"google/gemini-2.5-flash", "openai/gpt-4o"},
		},
		{
			name: "payload wrapped in prose",
			raw: `Sure! After careful consideration, my ranking is:
{"ranking": ["openai/gpt-4o", "google/gemini-2.5-flash"]}
Hope that helps.`,
			want: domain.Ranking{"openai/gpt-4o", "google/gemini-2.5-flash"},
		},
		{
			name: "payload in markdown fence",
			raw: "```json\n{\"ranking\": [\"anthropic/claude-4-sonnet\", \"openai/gpt-4o\"]}\n```",
			want: domain.Ranking{"anthropic/claude-4-sonnet", "openai/gpt-4o"},
		},
		{
			name: "fence without language tag",
			raw:  "```\n[\"openai/gpt-4o\"]\n```",
			want: domain.Ranking{"openai/gpt-4o"},
		},
		{
			name: "caseless match",
			raw:  `["OpenAI/GPT-4o", "ANTHROPIC/claude-4-sonnet"]`,
			want: domain.Ranking{"openai/gpt-4o", "anthropic/claude-4-sonnet"},
		},
		{
			name: "single edit fuzzy match",
			raw:  `["openai/gpt-4", "anthropic/claude-4-sonnett"]`,
			want: domain.Ranking{"openai/gpt-4o", "anthropic/claude-4-sonnet"},
		},
		{
			name: "unknown names dropped",
			raw:  `["openai/gpt-4o", "mystery/model-x", "google/gemini-2.5-flash"]`,
			want: domain.Ranking{"openai/gpt-4o", "google/gemini-2.5-flash"},
		},
		{
			name: "duplicates keep first position",
			raw:  `["openai/gpt-4o", "google/gemini-2.5-flash", "openai/gpt-4o"]`,
			want: domain.Ranking{"openai/gpt-4o", "google/gemini-2.5-flash"},
		},
		{
			name:        "pure prose",
			raw:         "I think the first answer was the strongest overall.",
			wantFailure: true,
			reason:      "no structured ranking",
		},
		{
			name:        "empty input",
			raw:         "",
			wantFailure: true,
			reason:      "no structured ranking",
		},
		{
			name:        "unterminated payload",
			raw:         `{"ranking": ["openai/gpt-4o"`,
			wantFailure: true,
			reason:      "no structured ranking",
		},
		{
			name:        "all names unknown",
			raw:         `["mystery/model-x", "mystery/model-y"]`,
			wantFailure: true,
			reason:      "no known participant",
		},
		{
			name:        "wrong payload shape",
			raw:         `{"winner": "openai/gpt-4o"}`,
			wantFailure: true,
			reason:      "no structured ranking",
		},
	}

	extractor := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranking, failure := extractor.ExtractRanking(tt.raw, knownNames)
			if tt.wantFailure {
				require.NotNil(t, failure)
				assert.Contains(t, failure.Reason, tt.reason)
				assert.Nil(t, ranking)
				return
			}
			require.Nil(t, failure)
			assert.Equal(t, tt.want, ranking)
		})
	}
}

// Extraction of an already-clean payload must be a fixpoint: feeding the
// canonical form back in yields the identical ranking.
func TestExtractRankingIdempotent(t *testing.T) {
	extractor := newTestExtractor()

	first, failure := extractor.ExtractRanking(
		"```json\n{\"ranking\": [\"openai/gpt-4o\", \"google/gemini-2.5-flash\"]}\n```",
		knownNames)
	require.Nil(t, failure)

	again, failure := extractor.ExtractRanking(`["`+strings.Join(first, `", "`)+`"]`, knownNames)
	require.Nil(t, failure)
	assert.Equal(t, first, again)
}

func TestExtractRankingNeverPanics(t *testing.T) {
	inputs := []string{
		"{{{{[[[[",
		"\"unclosed string with [ bracket",
		"```json\n```",
		`{"ranking": "not-an-array"}`,
		`[1, 2, 3]`,
		strings.Repeat("[", 10000),
		"\x00\xff\xfe",
	}

	extractor := newTestExtractor()
	for _, input := range inputs {
		ranking, failure := extractor.ExtractRanking(input, knownNames)
		assert.Nil(t, ranking, "input %q", input)
		require.NotNil(t, failure, "input %q", input)
	}
}

func TestExtractionFailureSnippetBounded(t *testing.T) {
	raw := strings.Repeat("garbage ", 100)
	extractor := newTestExtractor()

	_, failure := extractor.ExtractRanking(raw, knownNames)
	require.NotNil(t, failure)
	assert.LessOrEqual(t, len(failure.Snippet), domain.MaxSnippetLen)
}

func TestRecoverPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "array in prose",
			raw:  `here you go: ["a", "b"] enjoy`,
			want: `["a", "b"]`,
		},
		{
			name: "object with nested array",
			raw:  `result {"ranking": ["a", "b"]} done`,
			want: `{"ranking": ["a", "b"]}`,
		},
		{
			name: "bracket inside string literal",
			raw:  `["name [1]", "other"] trailing`,
			want: `["name [1]", "other"]`,
		},
		{
			name: "escaped quote inside string",
			raw:  `["he said \"[hi]\"", "b"]`,
			want: `["he said \"[hi]\"", "b"]`,
		},
		{
			name: "no payload",
			raw:  "nothing structured here",
			want: "",
		},
		{
			name: "unbalanced payload",
			raw:  `{"ranking": ["a"`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecoverPayload(tt.raw))
		})
	}
}
