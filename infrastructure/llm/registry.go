package llm

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// ProviderConfig holds provider-specific configuration.
type ProviderConfig struct {
	// Type specifies the provider implementation type (openai, anthropic, google).
	Type string
	// EnvVar specifies the environment variable holding the API key.
	EnvVar string
	// DefaultModel specifies the model used when a call does not override it.
	DefaultModel string
	// BaseURL overrides the default API endpoint for the provider.
	BaseURL string
	// Middleware specifies provider-specific middleware, applied after the
	// registry defaults.
	Middleware []Middleware
}

// RegistryConfig holds configuration for building the provider registry.
type RegistryConfig struct {
	// Providers defines the providers to construct, keyed by name.
	Providers map[string]ProviderConfig
	// DefaultTimeout sets the request timeout applied to every client.
	DefaultTimeout time.Duration
	// DefaultMiddleware is applied to all providers, outermost first.
	DefaultMiddleware []Middleware
	// Logger receives a warning per provider that fails to construct.
	Logger zerolog.Logger
}

// DefaultProviders provides standard provider configurations for common
// LLM services. Applications can use this as a starting point and override
// specific settings.
var DefaultProviders = map[string]ProviderConfig{
	"openai": {
		Type:         "openai",
		EnvVar:       "OPENAI_API_KEY",
		DefaultModel: OpenAIDefaultModel,
	},
	"anthropic": {
		Type:         "anthropic",
		EnvVar:       "ANTHROPIC_API_KEY",
		DefaultModel: AnthropicDefaultModel,
	},
	"google": {
		Type:         "google",
		EnvVar:       "GOOGLE_API_KEY",
		DefaultModel: GoogleDefaultModel,
	},
}

// Registry holds the provider clients constructed at startup, keyed by
// provider name. Construction is eager and failure-tolerant: a provider
// that cannot be built is recorded and omitted rather than aborting
// startup, so the system degrades to fewer participants. The registry is
// read-only after construction and therefore needs no locking during
// rounds.
type Registry struct {
	clients  map[string]ports.LLMClient
	failures map[string]error
}

var _ ports.ClientSource = (*Registry)(nil)

// NewRegistry attempts to build a client for every configured provider.
// Individual construction failures (missing API key, bad configuration)
// are logged and recorded in the failures map. The only fatal condition
// is an empty registry: when zero providers construct, NewRegistry
// returns domain.ErrNoUsableClients.
func NewRegistry(config RegistryConfig) (*Registry, error) {
	if len(config.Providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", domain.ErrNoUsableClients)
	}

	r := &Registry{
		clients:  make(map[string]ports.LLMClient, len(config.Providers)),
		failures: make(map[string]error),
	}

	for name, pc := range config.Providers {
		client, err := buildClient(name, pc, config)
		if err != nil {
			r.failures[name] = err
			config.Logger.Warn().
				Err(err).
				Str("provider", name).
				Msg("provider client unavailable, omitting from registry")
			continue
		}
		r.clients[name] = client
	}

	if len(r.clients) == 0 {
		return nil, fmt.Errorf("%w: all %d configured providers failed",
			domain.ErrNoUsableClients, len(config.Providers))
	}

	return r, nil
}

// buildClient constructs one provider client with merged middleware and
// the registry-wide timeout.
func buildClient(name string, pc ProviderConfig, config RegistryConfig) (ports.LLMClient, error) {
	if pc.EnvVar == "" {
		return nil, fmt.Errorf("provider %q: no API key environment variable configured", name)
	}

	apiKey := os.Getenv(pc.EnvVar)
	if apiKey == "" {
		return nil, fmt.Errorf("provider %q: %s environment variable not set", name, pc.EnvVar)
	}

	middleware := append([]Middleware{}, config.DefaultMiddleware...)
	middleware = append(middleware, pc.Middleware...)

	return NewClient(pc.Type, ClientConfig{
		APIKey:     apiKey,
		Model:      pc.DefaultModel,
		BaseURL:    pc.BaseURL,
		Timeout:    config.DefaultTimeout,
		Middleware: middleware,
	})
}

// Client returns the client for the named provider. The returned error
// carries the original construction failure when the provider was
// configured but unusable.
func (r *Registry) Client(provider string) (ports.LLMClient, error) {
	if client, ok := r.clients[provider]; ok {
		return client, nil
	}
	if err, ok := r.failures[provider]; ok {
		return nil, fmt.Errorf("provider %q unavailable: %w", provider, err)
	}
	return nil, fmt.Errorf("provider %q not configured", provider)
}

// Providers returns the names of all usable providers in sorted order.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failures returns the construction error for each provider that could
// not be built. The map must not be mutated.
func (r *Registry) Failures() map[string]error {
	return r.failures
}
