package chatcompat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := New(Config{
		Provider: domain.ProviderTogether,
		APIKey:   "test-key",
		BaseURL:  srv.URL + "/v1/",
		Model:    "meta-llama/Llama-3-8b-chat-hf",
	})
	require.NoError(t, err)
	return g
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing key", cfg: Config{Provider: domain.ProviderMistral, BaseURL: "http://x", Model: "m"}},
		{name: "missing base url", cfg: Config{Provider: domain.ProviderMistral, APIKey: "k", Model: "m"}},
		{name: "missing model", cfg: Config{Provider: domain.ProviderMistral, APIKey: "k", BaseURL: "http://x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, g)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	g, err := New(Config{Provider: domain.ProviderMistral, APIKey: "k", BaseURL: "http://x/v1", Model: "m"})

	require.NoError(t, err)
	assert.Equal(t, DefaultTemperature, g.temperature)
	assert.Equal(t, DefaultTimeout, g.client.Timeout)
	assert.Equal(t, "http://x/v1/chat/completions", g.endpoint)
	assert.Equal(t, domain.ProviderMistral, g.Provider())
	assert.Equal(t, "m", g.ModelName())
}

func TestGenerate_Success(t *testing.T) {
	var got chatCompletionRequest
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Once upon a time.\n"},"finish_reason":"stop"}]}`))
	})

	text, err := g.Generate(context.Background(), domain.GenerationRequest{Prompt: "Tell a story", MaxOutputTokens: 50})

	require.NoError(t, err)
	assert.Equal(t, "Once upon a time.", text)
	assert.Equal(t, "meta-llama/Llama-3-8b-chat-hf", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "Tell a story", got.Messages[0].Content)
	assert.Equal(t, 50, got.MaxTokens)
	assert.Equal(t, DefaultTemperature, got.Temperature)
}

func TestGenerate_RequestTemperatureOverrides(t *testing.T) {
	var got chatCompletionRequest
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"x"}}]}`))
	})

	temperature := 0.2
	_, err := g.Generate(context.Background(), domain.GenerationRequest{Prompt: "p", Temperature: &temperature})

	require.NoError(t, err)
	assert.Equal(t, 0.2, got.Temperature)
}

func TestGenerate_ZeroTemperatureIsSent(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"x"}}]}`))
	}))
	t.Cleanup(srv.Close)

	zero := 0.0
	g, err := New(Config{
		Provider:    domain.ProviderTogether,
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Model:       "m",
		Temperature: &zero,
	})
	require.NoError(t, err)
	assert.Zero(t, g.temperature)

	_, err = g.Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})

	require.NoError(t, err)
	assert.Contains(t, string(body), `"temperature":0`)
	assert.NotContains(t, string(body), `"temperature":0.7`)
}

func TestGenerate_RequestZeroTemperatureOverridesDefault(t *testing.T) {
	var got chatCompletionRequest
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"x"}}]}`))
	})

	zero := 0.0
	_, err := g.Generate(context.Background(), domain.GenerationRequest{Prompt: "p", Temperature: &zero})

	require.NoError(t, err)
	assert.Zero(t, got.Temperature)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind error
	}{
		{name: "malformed json", status: 200, body: `{not json`, wantKind: domain.ErrMalformedResponse},
		{name: "no choices", status: 200, body: `{"choices":[]}`, wantKind: domain.ErrMalformedResponse},
		{name: "error field", status: 200, body: `{"error":{"message":"bad model"}}`},
		{name: "unauthorised", status: 401, body: `{"error":{"message":"no"}}`, wantKind: domain.ErrAuthInvalid},
		{name: "rate limited", status: 429, body: `{}`, wantKind: domain.ErrRateLimited},
		{name: "server error", status: 500, body: `oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			text, err := g.Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})

			assert.Equal(t, "", text)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrGeneration)
			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
			}

			var genErr *domain.GenerationError
			require.True(t, errors.As(err, &genErr))
			assert.Equal(t, domain.ProviderTogether, genErr.Provider)
		})
	}
}

func TestGenerate_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	g, err := New(Config{Provider: domain.ProviderMistral, APIKey: "k", BaseURL: url, Model: "m"})
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})

	assert.Equal(t, "", text)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestGenerate_RetryAfterPropagates(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := g.Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})

	var genErr *domain.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, 12, genErr.RetryAfter)
}
