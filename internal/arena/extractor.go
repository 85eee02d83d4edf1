package arena

import (
	"encoding/json"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-arena/internal/domain"
)

// foldCaser performs Unicode case folding for caseless name comparison.
var foldCaser = cases.Fold()

// maxNameDistance is the largest edit distance still accepted as a
// near-miss when matching a ranked name against the known participants.
const maxNameDistance = 1

// rankingPayload is the object form judges are instructed to emit.
type rankingPayload struct {
	Ranking []string `json:"ranking"`
}

// Extractor recovers an ordered ranking of participant names from
// free-form model output. Extraction is two-phase: a strict JSON parse
// of the whole response, then heuristic recovery of an embedded payload
// when the response wraps its JSON in prose or markdown fences.
// An Extractor is stateless and safe for concurrent use.
type Extractor struct {
	logger zerolog.Logger
}

// NewExtractor creates an Extractor that logs dropped names through the
// given logger.
func NewExtractor(logger zerolog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractRanking parses raw model output into an ordered ranking over
// the known participant names. Names that cannot be matched to a known
// participant are dropped with a warning; duplicates keep their first
// position. A response with no parseable payload, or whose payload
// names no known participant, yields an ExtractionFailure. The function
// never panics on malformed input.
func (e *Extractor) ExtractRanking(raw string, known []string) (domain.Ranking, *domain.ExtractionFailure) {
	names, ok := parseRanking(strings.TrimSpace(raw))
	if !ok {
		recovered := RecoverPayload(raw)
		if recovered != "" {
			names, ok = parseRanking(recovered)
		}
	}
	if !ok {
		return nil, domain.NewExtractionFailure("no structured ranking found in response", raw)
	}

	ranking := make(domain.Ranking, 0, len(names))
	for _, name := range names {
		canonical, matched := e.matchName(name, known)
		if !matched {
			e.logger.Warn().
				Str("name", name).
				Msg("dropping ranked name with no matching participant")
			continue
		}
		if ranking.Contains(canonical) {
			continue
		}
		ranking = append(ranking, canonical)
	}

	if len(ranking) == 0 {
		return nil, domain.NewExtractionFailure("ranking names no known participant", raw)
	}
	return ranking, nil
}

// parseRanking attempts a strict parse of the two accepted payload
// shapes: a bare JSON array of strings, or an object with a "ranking"
// array field.
func parseRanking(s string) ([]string, bool) {
	if s == "" {
		return nil, false
	}

	var names []string
	if err := json.Unmarshal([]byte(s), &names); err == nil {
		return names, true
	}

	var payload rankingPayload
	if err := json.Unmarshal([]byte(s), &payload); err == nil && payload.Ranking != nil {
		return payload.Ranking, true
	}
	return nil, false
}

// RecoverPayload extracts a candidate JSON payload from a response that
// wraps it in prose or markdown fences. It strips a fenced code block
// when present, then takes the first balanced array or object, tracking
// string literals so brackets inside quoted names do not confuse the
// match. Returns "" when no candidate is found.
func RecoverPayload(raw string) string {
	s := stripFences(raw)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return ""
	}

	open := s[start]
	var closing byte = ']'
	if open == '{' {
		closing = '}'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// Brackets inside string literals are payload text.
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag, returning the inner content. Input without a fence is
// returned unchanged.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "```")
	if open == -1 {
		return s
	}

	inner := s[open+3:]
	if nl := strings.IndexByte(inner, '\n'); nl != -1 {
		// Drop the language tag line when the fence has one.
		tag := strings.TrimSpace(inner[:nl])
		if tag == "" || !strings.ContainsAny(tag, "[{") {
			inner = inner[nl+1:]
		}
	}
	if end := strings.Index(inner, "```"); end != -1 {
		inner = inner[:end]
	}
	return strings.TrimSpace(inner)
}

// matchName resolves a ranked name to its canonical participant name.
// Matching is progressive: exact, then caseless via Unicode folding,
// then a single-edit fuzzy match for minor misspellings.
func (e *Extractor) matchName(name string, known []string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	for _, k := range known {
		if k == name {
			return k, true
		}
	}

	folded := foldCaser.String(name)
	for _, k := range known {
		if foldCaser.String(k) == folded {
			return k, true
		}
	}

	for _, k := range known {
		if levenshtein.ComputeDistance(folded, foldCaser.String(k)) <= maxNameDistance {
			return k, true
		}
	}
	return "", false
}
