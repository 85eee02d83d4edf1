package arena

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-arena/internal/domain"
)

// ProviderSettings is the configuration for one provider entry. The
// arena core stays transport-agnostic: these settings are mapped onto
// concrete provider clients by the composition root.
type ProviderSettings struct {
	// Type names the provider implementation (openai, anthropic, google).
	Type string `yaml:"type" validate:"required,oneof=openai anthropic google"`

	// EnvVar names the environment variable holding the API key.
	EnvVar string `yaml:"env_var" validate:"required"`

	// DefaultModel is used when a participant does not pin a model.
	DefaultModel string `yaml:"default_model,omitempty"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`
}

// Config is the on-disk tournament configuration.
type Config struct {
	// Providers declares every provider the tournament may call.
	Providers map[string]ProviderSettings `yaml:"providers" validate:"required,min=1,dive"`

	// Competitors lists the "provider/model" participants that answer.
	Competitors []string `yaml:"competitors" validate:"required,min=1,dive,required"`

	// Judges lists the "provider/model" participants that rank answers.
	Judges []string `yaml:"judges" validate:"required,min=1,dive,required"`

	// QuestionModel is the "provider/model" used to generate the question.
	// Optional when Question is set.
	QuestionModel string `yaml:"question_model,omitempty"`

	// Question, when set, is used verbatim instead of being generated.
	Question string `yaml:"question,omitempty"`

	// Topic seeds question generation.
	Topic string `yaml:"topic,omitempty"`

	// Round holds the execution parameters shared by both rounds.
	Round ExecutorConfig `yaml:"round"`
}

// LoadConfig reads and validates a tournament configuration file.
// Decoding is strict, so unknown fields fail loudly instead of being
// silently dropped.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates raw YAML configuration bytes.
func ParseConfig(data []byte) (*Config, error) {
	cfg := Config{Round: DefaultExecutorConfig()}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := cfg.Tournament(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Tournament converts the parsed configuration into a TournamentConfig,
// resolving every "provider/model" string and checking that each one
// references a declared provider.
func (c *Config) Tournament() (TournamentConfig, error) {
	tc := TournamentConfig{
		Question: c.Question,
		Topic:    c.Topic,
	}

	var err error
	if tc.Competitors, err = c.participants("competitors", c.Competitors); err != nil {
		return TournamentConfig{}, err
	}
	if tc.Judges, err = c.participants("judges", c.Judges); err != nil {
		return TournamentConfig{}, err
	}

	if c.QuestionModel != "" {
		qm, err := c.participant("question_model", c.QuestionModel)
		if err != nil {
			return TournamentConfig{}, err
		}
		tc.QuestionModel = qm
	}
	if c.Question == "" && c.QuestionModel == "" {
		return TournamentConfig{}, fmt.Errorf("config requires either question or question_model")
	}
	return tc, nil
}

// participants parses a list of "provider/model" strings.
func (c *Config) participants(field string, specs []string) ([]domain.Participant, error) {
	out := make([]domain.Participant, 0, len(specs))
	for _, spec := range specs {
		p, err := c.participant(field, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// participant parses one "provider/model" string and verifies that its
// provider is declared.
func (c *Config) participant(field, spec string) (domain.Participant, error) {
	p, err := domain.ParseParticipant(spec)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("%s: %w", field, err)
	}
	if _, ok := c.Providers[p.Provider]; !ok {
		return domain.Participant{}, fmt.Errorf(
			"%s: participant %q references undeclared provider %q", field, spec, p.Provider)
	}
	return p, nil
}

// CallTimeout returns the per-call timeout, exposed so the composition
// root can align the registry-wide client timeout with the round budget.
func (c *Config) CallTimeout() time.Duration { return c.Round.CallTimeout }
