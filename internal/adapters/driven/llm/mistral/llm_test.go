package mistral

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(Config{Model: "mistral-large-latest"})
	assert.Error(t, err)
}

func TestNewGenerator_Defaults(t *testing.T) {
	g, err := NewGenerator(Config{APIKey: "k"})

	require.NoError(t, err)
	assert.Equal(t, DefaultModel, g.ModelName())
	assert.Equal(t, domain.ProviderMistral, g.Provider())
}

func TestGenerate_MalformedBodyReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":`))
	}))
	defer srv.Close()

	g, err := NewGenerator(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), domain.GenerationRequest{Prompt: "hi"})

	assert.Empty(t, text)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}
