// Package gemini provides a text generator backed by Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/llmprint/internal/adapters/driven/llm/httpjson"
	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.TextGenerator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultModel       = "gemini-1.5-flash"
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.7
)

// Config holds configuration for the Gemini generator.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint (optional).
	BaseURL string

	// Model is the model to use (default: gemini-1.5-flash).
	Model string

	// Temperature is the default sampling temperature (default: 0.7).
	Temperature *float64

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// contentFunc performs one GenerateContent call. It is swapped in tests.
type contentFunc func(ctx context.Context, model string, temperature float32, maxTokens int32, prompt string) (*genai.GenerateContentResponse, error)

// Generator produces text using the Gemini API.
type Generator struct {
	client      *genai.Client
	generate    contentFunc
	model       string
	temperature float64
	timeout     time.Duration
}

// NewGenerator creates a new Gemini generator.
// The caller must Close the generator to release the underlying client.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
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

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	g := &Generator{
		client:      client,
		model:       cfg.Model,
		temperature: temperature,
		timeout:     cfg.Timeout,
	}
	g.generate = g.callClient
	return g, nil
}

// callClient builds a fresh model handle per call so the generator keeps no
// per-request state.
func (g *Generator) callClient(
	ctx context.Context,
	model string,
	temperature float32,
	maxTokens int32,
	prompt string,
) (*genai.GenerateContentResponse, error) {
	m := g.client.GenerativeModel(model)
	m.SetTemperature(temperature)
	if maxTokens > 0 {
		m.SetMaxOutputTokens(maxTokens)
	}
	return m.GenerateContent(ctx, genai.Text(prompt))
}

// Generate sends one user prompt and returns the trimmed completion.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.generate(ctx, g.model, float32(temperature), int32(req.MaxOutputTokens), req.Prompt)
	if err != nil {
		return "", httpjson.Failure(domain.ProviderGemini, g.model, classify(err))
	}

	text, err := firstText(resp)
	if err != nil {
		return "", httpjson.Failure(domain.ProviderGemini, g.model, err)
	}
	return text, nil
}

// firstText extracts the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", domain.ErrMalformedResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: candidate has no content", domain.ErrMalformedResponse)
	}

	var result strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result.WriteString(string(text))
		}
	}
	if result.Len() == 0 {
		return "", fmt.Errorf("%w: candidate has no text parts", domain.ErrMalformedResponse)
	}
	return strings.TrimSpace(result.String()), nil
}

// classify attaches domain error kinds to Google API errors.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
	default:
		return err
	}
}

// Provider returns domain.ProviderGemini.
func (g *Generator) Provider() domain.Provider {
	return domain.ProviderGemini
}

// ModelName returns the name of the model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Close releases the underlying client.
func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
