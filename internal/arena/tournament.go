package arena

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// DefaultTopic seeds question generation when the configuration names
// no topic.
const DefaultTopic = "general reasoning"

var questionTmpl = template.Must(template.New("question").Parse(
	`Generate one challenging, open-ended question about {{.Topic}}.
The question should reward depth of reasoning and have no single correct answer.
Respond with the question text only, no preamble.`))

var answerTmpl = template.Must(template.New("answer").Parse(
	`Answer the following question as well as you can.

Question: {{.Question}}`))

var judgeTmpl = template.Must(template.New("judge").Parse(
	`You are judging answers to a question. Rank the answers from best to
worst by accuracy, depth, and clarity.

Question: {{.Question}}

{{range .Answers}}### {{.Name}}
{{.Text}}

{{end}}Respond with valid JSON only, in exactly this form, using the answer
labels verbatim:
{"ranking": ["best-label", "second-label", "worst-label"]}`))

// TournamentConfig describes one full tournament run.
type TournamentConfig struct {
	// Competitors answer the question. At least one is required.
	Competitors []domain.Participant `validate:"required,min=1"`

	// Judges rank the competitors' answers. At least one is required.
	Judges []domain.Participant `validate:"required,min=1"`

	// QuestionModel generates the question when Question is empty.
	QuestionModel domain.Participant

	// Question, when set, is used verbatim and skips generation.
	Question string

	// Topic seeds question generation. Empty means DefaultTopic.
	Topic string
}

// TournamentResult carries everything a run produced, including the raw
// per-stage results so callers can render or persist them.
type TournamentResult struct {
	Question    string               `json:"question"`
	Answers     domain.RoundResult   `json:"-"`
	Reports     []domain.JudgeReport `json:"reports"`
	Leaderboard domain.Leaderboard   `json:"leaderboard"`
}

// Tournament runs the three stages of a full match: question
// generation, the competitor answer round, and the judge ranking round,
// then aggregates the judges' rankings into a leaderboard.
type Tournament struct {
	clients   ports.ClientSource
	executor  *Executor
	extractor *Extractor
	config    TournamentConfig
	logger    zerolog.Logger
}

// NewTournament validates the configuration and assembles a Tournament.
// Either Question or QuestionModel must be set.
func NewTournament(
	clients ports.ClientSource,
	executor *Executor,
	extractor *Extractor,
	config TournamentConfig,
	logger zerolog.Logger,
) (*Tournament, error) {
	if clients == nil {
		return nil, fmt.Errorf("client source cannot be nil")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("tournament configuration validation failed: %w", err)
	}
	if config.Question == "" && config.QuestionModel == (domain.Participant{}) {
		return nil, fmt.Errorf("either a fixed question or a question model is required")
	}
	if config.Topic == "" {
		config.Topic = DefaultTopic
	}
	return &Tournament{
		clients:   clients,
		executor:  executor,
		extractor: extractor,
		config:    config,
		logger:    logger,
	}, nil
}

// Run executes one tournament. It returns an error only when the run
// cannot proceed at all: question generation failed, or a round could
// not be submitted. Per-competitor and per-judge failures are carried
// in the result, and a run where every judge fails extraction still
// completes with an empty leaderboard.
func (t *Tournament) Run(ctx context.Context) (*TournamentResult, error) {
	question, err := t.question(ctx)
	if err != nil {
		return nil, err
	}
	t.logger.Info().Str("question", question).Msg("tournament question ready")

	answerPrompt, err := render(answerTmpl, map[string]any{"Question": question})
	if err != nil {
		return nil, err
	}

	answers, err := t.executor.RunRound(ctx, "answer", t.config.Competitors,
		func(domain.Participant) string { return answerPrompt })
	if err != nil {
		return nil, fmt.Errorf("answer round: %w", err)
	}

	answered := answers.Successes()
	sort.Slice(answered, func(i, j int) bool {
		return answered[i].String() < answered[j].String()
	})
	t.logger.Info().
		Int("answered", len(answered)).
		Int("failed", answers.FailureCount()).
		Msg("answer round complete")

	result := &TournamentResult{Question: question, Answers: answers}
	if len(answered) == 0 {
		t.logger.Warn().Msg("no competitor produced an answer, skipping judging")
		return result, nil
	}

	reports, err := t.judge(ctx, question, answered, answers)
	if err != nil {
		return nil, err
	}
	result.Reports = reports

	known := make([]string, len(answered))
	for i, p := range answered {
		known[i] = p.String()
	}
	result.Leaderboard = Aggregate(reports, known)
	return result, nil
}

// question returns the configured question or generates one through the
// question model. Generation failure is fatal to the run, since both
// later rounds depend on the question.
func (t *Tournament) question(ctx context.Context) (string, error) {
	if t.config.Question != "" {
		return t.config.Question, nil
	}

	client, err := t.clients.Client(t.config.QuestionModel.Provider)
	if err != nil {
		return "", fmt.Errorf("question model: %w", err)
	}

	prompt, err := render(questionTmpl, map[string]any{"Topic": t.config.Topic})
	if err != nil {
		return "", err
	}

	text, err := client.Complete(ctx, prompt, map[string]any{
		"model": t.config.QuestionModel.Model,
	})
	if err != nil {
		return "", fmt.Errorf("generating question: %w", err)
	}

	question := strings.TrimSpace(text)
	if question == "" {
		return "", fmt.Errorf("question model returned an empty question")
	}
	return question, nil
}

// judge runs the ranking round and converts each judge's outcome into a
// JudgeReport. A failed call and a failed extraction look the same to
// aggregation: a report carrying a failure instead of a ranking.
func (t *Tournament) judge(
	ctx context.Context,
	question string,
	answered []domain.Participant,
	answers domain.RoundResult,
) ([]domain.JudgeReport, error) {
	type labeled struct {
		Name string
		Text string
	}
	blocks := make([]labeled, len(answered))
	for i, p := range answered {
		blocks[i] = labeled{Name: p.String(), Text: answers[p].Text}
	}

	judgePrompt, err := render(judgeTmpl, map[string]any{
		"Question": question,
		"Answers":  blocks,
	})
	if err != nil {
		return nil, err
	}

	outcomes, err := t.executor.RunRound(ctx, "judge", t.config.Judges,
		func(domain.Participant) string { return judgePrompt })
	if err != nil {
		return nil, fmt.Errorf("judge round: %w", err)
	}

	known := make([]string, len(answered))
	for i, p := range answered {
		known[i] = p.String()
	}

	reports := make([]domain.JudgeReport, 0, len(outcomes))
	for judge, outcome := range outcomes {
		report := domain.JudgeReport{Judge: judge}
		switch {
		case !outcome.OK():
			report.Failure = domain.NewExtractionFailure(
				fmt.Sprintf("judge call failed: %s", outcome.Failure.Detail), "")
		default:
			ranking, failure := t.extractor.ExtractRanking(outcome.Text, known)
			if failure != nil {
				t.logger.Warn().
					Str("judge", judge.String()).
					Str("reason", failure.Reason).
					Msg("judge output yielded no ranking")
				report.Failure = failure
			} else {
				report.Ranking = ranking
			}
		}
		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Judge.String() < reports[j].Judge.String()
	})
	return reports, nil
}

// render executes a template into a string.
func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}
