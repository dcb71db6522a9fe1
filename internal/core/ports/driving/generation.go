package driving

import (
	"context"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// GenerationService turns a plan into a persisted corpus.
type GenerationService interface {
	// Run executes the plan and writes the corpus.
	Run(ctx context.Context, plan domain.Plan, opts RunOptions) (*RunReport, error)

	// Sample answers prompts with one model, in order, without persisting anything.
	Sample(ctx context.Context, spec domain.ModelSpec, prompts []string, maxTokens int) ([]domain.GenerationResult, error)
}

// RunOptions tunes a single generation run.
type RunOptions struct {
	// FailurePolicy overrides the configured policy when set.
	FailurePolicy domain.FailurePolicy

	// Progress, when non-nil, is called after each job completes.
	Progress func(done, total int)
}

// RunReport summarises a finished run.
type RunReport struct {
	// Run is the ledger entry.
	Run domain.Run

	// Corpus describes what was written.
	Corpus domain.CorpusSummary

	// Failures lists the job indexes whose generation failed.
	Failures []int
}
