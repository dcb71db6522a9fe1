package driven

import (
	"context"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// RunStore persists the generation ledger.
type RunStore interface {
	// SaveRun stores or updates a run.
	SaveRun(ctx context.Context, run domain.Run) error

	// GetRun retrieves a run by ID. Returns domain.ErrNotFound if absent.
	GetRun(ctx context.Context, id string) (*domain.Run, error)

	// ListRuns returns runs, most recent first.
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)

	// SaveRecord stores one document attempt.
	SaveRecord(ctx context.Context, record domain.DocumentRecord) error

	// ListRecords returns the attempts of a run ordered by index.
	ListRecords(ctx context.Context, runID string) ([]domain.DocumentRecord, error)

	// Close releases resources.
	Close() error
}
