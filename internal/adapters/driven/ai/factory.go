// Package ai provides factory functions for creating text generator adapters.
package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/mistral"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/together"
	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.GeneratorFactory = (*Factory)(nil)

// Factory creates generators from application settings.
type Factory struct {
	settings *domain.Settings
}

// NewFactory creates a generator factory.
func NewFactory(settings *domain.Settings) *Factory {
	return &Factory{settings: settings}
}

// Create builds the generator for one model of the plan.
func (f *Factory) Create(ctx context.Context, spec domain.ModelSpec) (driven.TextGenerator, error) {
	return CreateGenerator(ctx, spec, f.settings.Provider(spec.Provider), f.settings.Generation)
}

// CreateGenerator creates the appropriate generator for spec.Provider.
func CreateGenerator(
	ctx context.Context,
	spec domain.ModelSpec,
	provider domain.ProviderSettings,
	generation domain.GenerationSettings,
) (driven.TextGenerator, error) {
	if !provider.IsConfigured() {
		return nil, fmt.Errorf("%s API key %w (set %s or providers.%s.api_key)",
			spec.Provider, domain.ErrNotConfigured, spec.Provider.EnvKey(), spec.Provider)
	}

	temperature := generation.Temperature
	if spec.Temperature != nil {
		temperature = *spec.Temperature
	}

	switch spec.Provider {
	case domain.ProviderOpenAI:
		return openai.NewGenerator(openai.Config{
			APIKey:      provider.APIKey,
			BaseURL:     provider.BaseURL,
			Model:       spec.Model,
			Temperature: &temperature,
			Timeout:     generation.Timeout,
		})

	case domain.ProviderAnthropic:
		return anthropic.NewGenerator(anthropic.Config{
			APIKey:      provider.APIKey,
			BaseURL:     provider.BaseURL,
			Model:       spec.Model,
			Temperature: &temperature,
			Timeout:     generation.Timeout,
		})

	case domain.ProviderTogether:
		return together.NewGenerator(together.Config{
			APIKey:      provider.APIKey,
			BaseURL:     provider.BaseURL,
			Model:       spec.Model,
			Temperature: &temperature,
			Timeout:     generation.Timeout,
		})

	case domain.ProviderMistral:
		return mistral.NewGenerator(mistral.Config{
			APIKey:      provider.APIKey,
			BaseURL:     provider.BaseURL,
			Model:       spec.Model,
			Temperature: &temperature,
			Timeout:     generation.Timeout,
		})

	case domain.ProviderGemini:
		return gemini.NewGenerator(ctx, gemini.Config{
			APIKey:      provider.APIKey,
			BaseURL:     provider.BaseURL,
			Model:       spec.Model,
			Temperature: &temperature,
			Timeout:     generation.Timeout,
		})

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, spec.Provider)
	}
}
