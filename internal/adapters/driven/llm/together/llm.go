// Package together provides a text generator backed by Together AI, which serves LLaMA and other open models.
package together

import (
	"time"

	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/chatcompat"
	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.together.xyz/v1"
	DefaultModel   = "meta-llama/Llama-3-70b-chat-hf"
)

// Config holds configuration for the Together generator.
type Config struct {
	// APIKey is the Together API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.together.xyz/v1).
	BaseURL string

	// Model is the model to use (default: meta-llama/Llama-3-70b-chat-hf).
	Model string

	// Temperature is the default sampling temperature (default: 0.7).
	Temperature *float64

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// NewGenerator creates a new Together generator.
func NewGenerator(cfg Config) (*chatcompat.Generator, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return chatcompat.New(chatcompat.Config{
		Provider:    domain.ProviderTogether,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	})
}
