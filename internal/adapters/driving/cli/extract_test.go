package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

func TestExtractCmd_UsesSettingsDefaults(t *testing.T) {
	extraction := &mockExtractionService{ids: []string{"a", "b", "c"}}
	cleanup := setupServices(Services{Settings: newMockSettingsService(), Extraction: extraction})
	defer cleanup()

	out, err := executeCommand("extract")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCorpusDir, extraction.corpusDir)
	assert.Equal(t, domain.DefaultFeaturesPath, extraction.outPath)
	assert.Contains(t, out, "Extracted features for 3 documents to "+domain.DefaultFeaturesPath)
}

func TestExtractCmd_Flags(t *testing.T) {
	extraction := &mockExtractionService{ids: []string{"a"}}
	cleanup := setupServices(Services{Extraction: extraction})
	defer cleanup()

	_, err := executeCommand("extract", "--corpus", "my/corpus", "--out", "my/features.csv")

	require.NoError(t, err)
	assert.Equal(t, "my/corpus", extraction.corpusDir)
	assert.Equal(t, "my/features.csv", extraction.outPath)
}

func TestExtractCmd_NoDocuments(t *testing.T) {
	extraction := &mockExtractionService{err: fmt.Errorf("%w: no .txt files", domain.ErrNoDocuments)}
	cleanup := setupServices(Services{Settings: newMockSettingsService(), Extraction: extraction})
	defer cleanup()

	_, err := executeCommand("extract")

	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestExtractCmd_NotConfigured(t *testing.T) {
	cleanup := setupServices(Services{})
	defer cleanup()

	_, err := executeCommand("extract")

	assert.EqualError(t, err, "extraction service not configured")
}
