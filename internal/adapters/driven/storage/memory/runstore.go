package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory generation ledger.
type RunStore struct {
	mu      sync.RWMutex
	runs    map[string]domain.Run
	records map[string][]domain.DocumentRecord
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs:    make(map[string]domain.Run),
		records: make(map[string][]domain.DocumentRecord),
	}
}

// SaveRun stores or updates a run.
func (s *RunStore) SaveRun(_ context.Context, run domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns runs, most recent first. A non-positive limit returns all runs.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// SaveRecord stores one document attempt, replacing an earlier record with the same index.
func (s *RunStore) SaveRecord(_ context.Context, record domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.records[record.RunID]
	for i := range records {
		if records[i].Index == record.Index {
			records[i] = record
			return nil
		}
	}
	s.records[record.RunID] = append(records, record)
	return nil
}

// ListRecords returns the attempts of a run ordered by index.
func (s *RunStore) ListRecords(_ context.Context, runID string) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.DocumentRecord, len(s.records[runID]))
	copy(records, s.records[runID])
	sort.Slice(records, func(i, j int) bool {
		return records[i].Index < records[j].Index
	})
	return records, nil
}

// Close is a no-op for the memory store.
func (s *RunStore) Close() error {
	return nil
}
