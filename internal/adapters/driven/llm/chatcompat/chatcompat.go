// Package chatcompat implements a text generator for providers that expose an
// OpenAI-compatible /chat/completions endpoint (Together AI, Mistral).
package chatcompat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/httpjson"
	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.TextGenerator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.7
)

// Config holds configuration for an OpenAI-compatible generator.
type Config struct {
	// Provider labels errors and results.
	Provider domain.Provider

	// APIKey is the bearer credential (required).
	APIKey string

	// BaseURL is the API root, without the /chat/completions suffix (required).
	BaseURL string

	// Model is the model identifier (required).
	Model string

	// Temperature is used when a request does not set one (default: 0.7).
	// Zero is sent as is.
	Temperature *float64

	// Timeout bounds each request (default: 60s).
	Timeout time.Duration
}

// Generator sends single-turn chat completions.
type Generator struct {
	client      *http.Client
	provider    domain.Provider
	endpoint    string
	apiKey      string
	model       string
	temperature float64
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates a generator for an OpenAI-compatible provider.
func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", cfg.Provider)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: base URL is required", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s: model is required", cfg.Provider)
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Generator{
		client:      &http.Client{Timeout: cfg.Timeout},
		provider:    cfg.Provider,
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: temperature,
	}, nil
}

// Generate sends one user-role prompt and returns the trimmed completion.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	text, err := g.chatCompletion(ctx, req)
	if err != nil {
		return "", httpjson.Failure(g.provider, g.model, err)
	}
	return text, nil
}

func (g *Generator) chatCompletion(ctx context.Context, req domain.GenerationRequest) (string, error) {
	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	reqBody := chatCompletionRequest{
		Model:       g.model,
		Messages:    []chatCompletionMsg{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxOutputTokens,
		Temperature: temperature,
	}

	resp, err := httpjson.Post(ctx, g.client, g.endpoint, map[string]string{
		"Authorization": "Bearer " + g.apiKey,
	}, reqBody)
	if err != nil {
		return "", err
	}
	if err := httpjson.CheckStatus(resp); err != nil {
		return "", err
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(resp.Body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrMalformedResponse, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%s error: %s", g.provider, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices returned", domain.ErrMalformedResponse)
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// Provider returns the backend this generator talks to.
func (g *Generator) Provider() domain.Provider {
	return g.provider
}

// ModelName returns the model identifier.
func (g *Generator) ModelName() string {
	return g.model
}
