// Package anthropic provides a text generator backed by the Anthropic Messages API.
package anthropic

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
	DefaultBaseURL     = "https://api.anthropic.com"
	DefaultModel       = "claude-3-5-sonnet-latest"
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.7

	// defaultMaxTokens is sent when a request leaves MaxOutputTokens unset;
	// the Messages API rejects requests without max_tokens.
	defaultMaxTokens = 1024

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic generator.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Temperature is the default sampling temperature (default: 0.7).
	Temperature *float64

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Generator produces text using the Anthropic API.
type Generator struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGenerator creates a new Anthropic generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
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

	return &Generator{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: temperature,
	}, nil
}

// Generate sends one user-role prompt and returns the trimmed completion.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	text, err := g.sendMessage(ctx, req)
	if err != nil {
		return "", httpjson.Failure(domain.ProviderAnthropic, g.model, err)
	}
	return text, nil
}

func (g *Generator) sendMessage(ctx context.Context, req domain.GenerationRequest) (string, error) {
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	reqBody := messagesRequest{
		Model:       g.model,
		Messages:    []messagesMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := httpjson.Post(ctx, g.client, g.baseURL+"/v1/messages", map[string]string{
		"x-api-key":         g.apiKey,
		"anthropic-version": anthropicVersion,
	}, reqBody)
	if err != nil {
		return "", err
	}
	if err := httpjson.CheckStatus(resp); err != nil {
		return "", err
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(resp.Body, &msgResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrMalformedResponse, err)
	}
	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}

	// The first text block is the completion.
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("%w: no text content returned", domain.ErrMalformedResponse)
}

// Provider returns domain.ProviderAnthropic.
func (g *Generator) Provider() domain.Provider {
	return domain.ProviderAnthropic
}

// ModelName returns the name of the model being used.
func (g *Generator) ModelName() string {
	return g.model
}
