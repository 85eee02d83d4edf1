package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-arena/infrastructure/llm"
	"github.com/ahrav/go-arena/infrastructure/metrics"
	"github.com/ahrav/go-arena/internal/arena"
	"github.com/ahrav/go-arena/internal/domain"
	"github.com/ahrav/go-arena/internal/ports"
)

// runEnv holds environment overrides for the run command. Flags win
// when both are set.
type runEnv struct {
	ConfigPath  string `env:"ARENA_CONFIG"`
	MetricsAddr string `env:"ARENA_METRICS_ADDR"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one tournament and print the leaderboard",
		RunE:  runTournament,
	}

	cmd.Flags().StringP("config", "c", "", "Path to the tournament config file")
	cmd.Flags().String("question", "", "Fixed question, overriding the config")
	cmd.Flags().String("metrics-addr", "", "Listen address for the Prometheus /metrics endpoint")
	cmd.Flags().Bool("json", false, "Print the leaderboard as JSON instead of a table")
	return cmd
}

func runTournament(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var env runEnv
	if err := envconfig.Process(ctx, &env); err != nil {
		return fmt.Errorf("processing environment: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = env.ConfigPath
	}
	if configPath == "" {
		return fmt.Errorf("a config file is required (--config or ARENA_CONFIG)")
	}

	cfg, err := arena.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if question, _ := cmd.Flags().GetString("question"); question != "" {
		cfg.Question = question
		cfg.QuestionModel = ""
	}

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if metricsAddr == "" {
		metricsAddr = env.MetricsAddr
	}

	var collector ports.MetricsCollector
	if metricsAddr != "" {
		collector = metrics.NewPrometheusMetrics(nil)
		go serveMetrics(metricsAddr)
	}

	registry, err := buildRegistry(cfg, collector)
	if err != nil {
		if errors.Is(err, domain.ErrNoUsableClients) {
			return &exitError{code: exitNoClients, err: err}
		}
		return err
	}
	log.Info().Strs("providers", registry.Providers()).Msg("provider registry ready")

	executor, err := arena.NewExecutor(registry, cfg.Round, &logProgress{})
	if err != nil {
		return err
	}

	tc, err := cfg.Tournament()
	if err != nil {
		return err
	}

	tournament, err := arena.NewTournament(
		registry, executor, arena.NewExtractor(log.Logger), tc, log.Logger)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := tournament.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("tournament complete")

	asJSON, _ := cmd.Flags().GetBool("json")
	if err := renderResult(cmd.OutOrStdout(), result, asJSON); err != nil {
		return err
	}

	if len(result.Leaderboard.Entries) == 0 {
		return &exitError{
			code: exitEmptyLeaderboard,
			err:  fmt.Errorf("no competitor received any votes"),
		}
	}
	return nil
}

// buildRegistry maps the declared providers onto registry entries and
// constructs the clients. Per-provider middleware carries the provider
// name so metrics are attributed to the right backend.
func buildRegistry(cfg *arena.Config, collector ports.MetricsCollector) (*llm.Registry, error) {
	providers := make(map[string]llm.ProviderConfig, len(cfg.Providers))
	for name, ps := range cfg.Providers {
		pc := llm.ProviderConfig{
			Type:         ps.Type,
			EnvVar:       ps.EnvVar,
			DefaultModel: ps.DefaultModel,
			BaseURL:      ps.BaseURL,
		}
		if pc.DefaultModel == "" {
			if def, ok := llm.DefaultProviders[ps.Type]; ok {
				pc.DefaultModel = def.DefaultModel
			}
		}
		if collector != nil {
			pc.Middleware = []llm.Middleware{llm.MetricsMiddleware(collector, name)}
		}
		providers[name] = pc
	}

	return llm.NewRegistry(llm.RegistryConfig{
		Providers:         providers,
		DefaultTimeout:    cfg.CallTimeout(),
		DefaultMiddleware: []llm.Middleware{llm.TracingMiddleware("arena")},
		Logger:            log.Logger,
	})
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
