package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// ExtractionService hands a corpus directory to the feature extractor.
type ExtractionService struct {
	extractor driven.FeatureExtractor
}

// NewExtractionService creates an extraction service.
// extractor may be nil; Extract then fails with domain.ErrNotConfigured.
func NewExtractionService(extractor driven.FeatureExtractor) *ExtractionService {
	return &ExtractionService{extractor: extractor}
}

// Extract checks the corpus holds documents and runs the extractor over it.
// It returns the doc_ids of the documents found.
func (s *ExtractionService) Extract(ctx context.Context, corpusDir, outputPath string) ([]string, error) {
	info, err := os.Stat(corpusDir)
	if err != nil {
		return nil, &domain.MissingInputError{Path: corpusDir, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.MissingInputError{Path: corpusDir, Err: errors.New("not a directory")}
	}

	ids, err := ListCorpusDocIDs(os.DirFS(corpusDir))
	if err != nil {
		return nil, &domain.MissingInputError{Path: corpusDir, Err: err}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", domain.ErrNoDocuments, domain.DocExtension, corpusDir)
	}

	if s.extractor == nil {
		return nil, fmt.Errorf("feature extractor: %w", domain.ErrNotConfigured)
	}

	logger.Info("Extracting features for %d documents from %s", len(ids), corpusDir)
	if err := s.extractor.Extract(ctx, corpusDir, outputPath); err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}
	return ids, nil
}

// ListCorpusDocIDs returns the normalised doc_ids of the corpus files at
// the root of fsys, sorted. Subdirectories are ignored.
func ListCorpusDocIDs(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), domain.DocExtension) {
			continue
		}
		ids = append(ids, domain.NormaliseDocID(entry.Name()))
	}
	sort.Strings(ids)
	return ids, nil
}
