package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
)

// Ensure RunService implements the interface.
var _ driving.RunService = (*RunService)(nil)

// RunService reads the generation ledger.
type RunService struct {
	store driven.RunStore
}

// NewRunService creates a run service. store may be nil.
func NewRunService(store driven.RunStore) *RunService {
	return &RunService{store: store}
}

// List returns recent runs, most recent first.
func (s *RunService) List(ctx context.Context, limit int) ([]domain.Run, error) {
	if s.store == nil {
		return nil, fmt.Errorf("run store: %w", domain.ErrNotConfigured)
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get returns a run and its document records.
func (s *RunService) Get(ctx context.Context, id string) (*domain.Run, []domain.DocumentRecord, error) {
	if s.store == nil {
		return nil, nil, fmt.Errorf("run store: %w", domain.ErrNotConfigured)
	}
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get run %s: %w", id, err)
	}
	records, err := s.store.ListRecords(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list records: %w", err)
	}
	return run, records, nil
}
