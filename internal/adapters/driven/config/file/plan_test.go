package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

const samplePlan = `
max_tokens: 150
repeats: 2
models:
  - provider: openai
    model: gpt-4o-mini
  - provider: together
    model: meta-llama/Llama-3-8b-chat-hf
    temperature: 0.9
genres:
  - name: news
    prompts:
      - Write a short news report about a local election.
  - name: fiction
    prompts:
      - Write the opening of a mystery novel.
      - Describe a storm at sea.
`

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0644))

	plan, err := NewPlanLoader().LoadPlan(path)

	require.NoError(t, err)
	assert.Equal(t, 150, plan.MaxTokens)
	assert.Equal(t, 2, plan.Repeats)
	require.Len(t, plan.Models, 2)
	assert.Equal(t, domain.ProviderTogether, plan.Models[1].Provider)
	assert.Nil(t, plan.Models[0].Temperature)
	require.NotNil(t, plan.Models[1].Temperature)
	assert.InDelta(t, 0.9, *plan.Models[1].Temperature, 0.0001)
	require.Len(t, plan.Genres, 2)
	assert.Len(t, plan.Genres[1].Prompts, 2)
	assert.Len(t, plan.Jobs(), 2*3*2)
}

func TestParsePlan_ZeroTemperature(t *testing.T) {
	plan, err := ParsePlan([]byte(`
models:
  - provider: mistral
    model: mistral-small-latest
    temperature: 0
genres:
  - name: news
    prompts: [Write a headline.]
`))

	require.NoError(t, err)
	require.Len(t, plan.Models, 1)
	require.NotNil(t, plan.Models[0].Temperature)
	assert.Zero(t, *plan.Models[0].Temperature)
}

func TestLoadPlan_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := NewPlanLoader().LoadPlan(path)

	assert.ErrorIs(t, err, domain.ErrMissingInput)
	assert.Contains(t, err.Error(), path)
}

func TestParsePlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty", content: "", wantErr: domain.ErrPlanNoModels},
		{name: "malformed", content: "models: [", wantErr: domain.ErrInvalidInput},
		{name: "unknown field", content: "modles: []", wantErr: domain.ErrInvalidInput},
		{
			name:    "unknown provider",
			content: "models: [{provider: cohere, model: x}]\ngenres: [{name: a, prompts: [p]}]",
			wantErr: domain.ErrUnsupportedProvider,
		},
		{
			name:    "no genres",
			content: "models: [{provider: openai, model: x}]",
			wantErr: domain.ErrPlanNoGenres,
		},
		{
			name:    "genre without prompts",
			content: "models: [{provider: openai, model: x}]\ngenres: [{name: a}]",
			wantErr: domain.ErrPlanNoPrompts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
