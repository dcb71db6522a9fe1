package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

func TestNewGenerator(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		g, err := NewGenerator(Config{})
		assert.Error(t, err)
		assert.Nil(t, g)
	})

	t.Run("applies defaults", func(t *testing.T) {
		g, err := NewGenerator(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, g.baseURL)
		assert.Equal(t, DefaultModel, g.ModelName())
		assert.Equal(t, DefaultTemperature, g.temperature)
		assert.Equal(t, DefaultTimeout, g.client.Timeout)
		assert.Equal(t, domain.ProviderAnthropic, g.Provider())
	})
}

func TestGenerate_Success(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"\n  A quiet harbour.  "},{"type":"text","text":"ignored"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	g, err := NewGenerator(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "claude-3-haiku"})
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), domain.GenerationRequest{Prompt: "Describe a harbour", MaxOutputTokens: 200})

	require.NoError(t, err)
	assert.Equal(t, "A quiet harbour.", text)
	assert.Equal(t, "claude-3-haiku", got.Model)
	assert.Equal(t, 200, got.MaxTokens)
	assert.Equal(t, DefaultTemperature, got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "Describe a harbour", got.Messages[0].Content)
}

func TestGenerate_ZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	zero := 0.0
	g, err := NewGenerator(Config{APIKey: "k", BaseURL: srv.URL, Temperature: &zero})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, 0.0, raw["temperature"])
}

func TestGenerate_DefaultMaxTokens(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	g, err := NewGenerator(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind error
	}{
		{name: "empty content", status: 200, body: `{"content":[]}`, wantKind: domain.ErrMalformedResponse},
		{name: "non-text content", status: 200, body: `{"content":[{"type":"tool_use"}]}`, wantKind: domain.ErrMalformedResponse},
		{name: "garbage", status: 200, body: `<html>`, wantKind: domain.ErrMalformedResponse},
		{name: "api error", status: 200, body: `{"error":{"type":"invalid_request_error","message":"bad"}}`},
		{name: "auth", status: 401, body: `{"error":{"type":"authentication_error","message":"bad key"}}`, wantKind: domain.ErrAuthInvalid},
		{name: "overloaded", status: 529, body: `{}`},
		{name: "rate limited", status: 429, body: `{}`, wantKind: domain.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := NewGenerator(Config{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			text, err := g.Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})

			assert.Empty(t, text)
			assert.ErrorIs(t, err, domain.ErrGeneration)
			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
			}
		})
	}
}
