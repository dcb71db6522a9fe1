// Package mistral provides a text generator backed by Mistral's official API.
package mistral

import (
	"time"

	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/chatcompat"
	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "mistral-small-latest"
)

// Config holds configuration for the Mistral generator.
type Config struct {
	// APIKey is the Mistral API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.mistral.ai/v1).
	BaseURL string

	// Model is the model to use (default: mistral-small-latest).
	Model string

	// Temperature is the default sampling temperature (default: 0.7).
	Temperature *float64

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// NewGenerator creates a new Mistral generator.
func NewGenerator(cfg Config) (*chatcompat.Generator, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return chatcompat.New(chatcompat.Config{
		Provider:    domain.ProviderMistral,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	})
}
