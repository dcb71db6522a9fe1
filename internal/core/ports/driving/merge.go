package driving

import (
	"context"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// MergeService joins corpus metadata with an external feature table.
type MergeService interface {
	// Merge loads both tables and inner-joins them on the normalised doc_id.
	Merge(ctx context.Context, metadataPath, featuresPath string) (*domain.Table, error)

	// Export writes a merged table to path.
	Export(table *domain.Table, path string) error
}

// ExtractionService hands a corpus to the external feature extractor.
type ExtractionService interface {
	// Extract runs the extractor and returns the doc_ids it was given.
	Extract(ctx context.Context, corpusDir, outputPath string) ([]string, error)
}
