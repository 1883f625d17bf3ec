package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/ai"
	"github.com/spigell/cv-ranker/internal/ai/gemini"
	"github.com/spigell/cv-ranker/internal/ai/openai"
	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/resilience"
	"github.com/spigell/cv-ranker/internal/secrets"
)

// ProviderOptions are the oracle.options keys understood by the providers.
type ProviderOptions struct {
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	BaseURL      string `mapstructure:"base-url"`
	Organization string `mapstructure:"organization"`
}

func decodeProviderOptions(raw map[string]any) (ProviderOptions, error) {
	var opts ProviderOptions
	if len(raw) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return opts, err
	}
	if err := decoder.Decode(raw); err != nil {
		return opts, fmt.Errorf("decoding oracle options: %w", err)
	}
	return opts, nil
}

func newGenerator(ctx context.Context, provider string, opts ProviderOptions) (ai.Generator, error) {
	switch provider {
	case "", gemini.Provider:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: opts.APIKey,
			File:  opts.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set oracle.options.api-key-file or GEMINI_API_KEY)", err)
		}
		return gemini.NewGenerator(ctx, apiKey, opts.Model)
	case openai.Provider:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: opts.APIKey,
			File:  opts.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set oracle.options.api-key-file or OPENAI_API_KEY)", err)
		}
		return openai.NewGenerator(openai.Config{
			APIKey:  apiKey,
			BaseURL: opts.BaseURL,
			OrgID:   opts.Organization,
			Model:   opts.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", provider)
	}
}

func newOracle(ctx context.Context, cfg OracleConfig, log *zap.Logger) (*ai.Oracle, ai.Generator, error) {
	opts, err := decodeProviderOptions(cfg.Options)
	if err != nil {
		return nil, nil, err
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	generator, err := newGenerator(ctx, provider, opts)
	if err != nil {
		return nil, nil, err
	}

	oracleLogger := logger.WithOracleFields(log, generator.Provider(), generator.Model())
	executor := resilience.NewExecutor(cfg.Retry, oracleLogger)

	oracle := ai.NewOracle(generator, executor, ai.OracleConfig{
		Timeout:           cfg.Timeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
		MaxLogLength:      cfg.MaxLogLength,
	}, oracleLogger)

	return oracle, generator, nil
}
