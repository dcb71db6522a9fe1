// Package openai provides a text generator backed by the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/httpjson"
	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.TextGenerator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.7
)

// Config holds configuration for the OpenAI generator.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Temperature is the default sampling temperature (default: 0.7).
	Temperature *float64

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Generator produces text using the OpenAI API.
type Generator struct {
	client      *goopenai.Client
	model       string
	temperature float64
}

// NewGenerator creates a new OpenAI generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Generator{
		client:      goopenai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: temperature,
	}, nil
}

// Generate sends one user-role prompt and returns the trimmed completion.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	text, err := g.chatCompletion(ctx, req)
	if err != nil {
		return "", httpjson.Failure(domain.ProviderOpenAI, g.model, classify(err))
	}
	return text, nil
}

func (g *Generator) chatCompletion(ctx context.Context, req domain.GenerationRequest) (string, error) {
	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxOutputTokens,
		Temperature: wireTemperature(temperature),
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices returned", domain.ErrMalformedResponse)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classify attaches domain error kinds to go-openai errors based on HTTP status.
func classify(err error) error {
	status := 0
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
	default:
		return err
	}
}

// Provider returns domain.ProviderOpenAI.
func (g *Generator) Provider() domain.Provider {
	return domain.ProviderOpenAI
}

// ModelName returns the name of the model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// wireTemperature converts t for the request. The client drops a zero
// temperature from the JSON body, so zero is sent as the smallest float32.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
