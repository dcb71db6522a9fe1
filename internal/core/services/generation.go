package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// Ensure GenerationService implements the interface.
var _ driving.GenerationService = (*GenerationService)(nil)

// GenerationService turns a plan into a persisted corpus.
type GenerationService struct {
	settings *domain.Settings
	factory  driven.GeneratorFactory
	executor *Executor
	writer   *CorpusWriter
	runStore driven.RunStore
	now      func() time.Time
}

// NewGenerationService creates a generation service.
// runStore is optional - if nil, runs are not recorded.
func NewGenerationService(
	settings *domain.Settings,
	factory driven.GeneratorFactory,
	executor *Executor,
	writer *CorpusWriter,
	runStore driven.RunStore,
) *GenerationService {
	return &GenerationService{
		settings: settings,
		factory:  factory,
		executor: executor,
		writer:   writer,
		runStore: runStore,
		now:      time.Now,
	}
}

// Run executes the plan and writes the corpus.
//
// Every job is numbered before any call is made and documents are saved in
// plan order. Failed generations follow the failure policy: "empty" keeps the
// document with an empty body, "skip" drops it, "fail_fast" aborts the run
// before anything is written.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *GenerationService) Run(ctx context.Context, plan domain.Plan, opts driving.RunOptions) (*driving.RunReport, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	policy := opts.FailurePolicy
	if policy == "" {
		policy = s.settings.Generation.FailurePolicy
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("%w: failure policy %q", domain.ErrInvalidInput, policy)
	}

	maxTokens := plan.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.settings.Generation.MaxTokens
	}

	// 1. Create one generator per model
	generators := make(map[string]driven.TextGenerator, len(plan.Models))
	defer func() {
		for _, gen := range generators {
			if c, ok := gen.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}()
	for _, spec := range plan.Models {
		if _, ok := generators[spec.Key()]; ok {
			continue
		}
		gen, err := s.factory.Create(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("create generator %s: %w", spec, err)
		}
		generators[spec.Key()] = gen
	}

	// 2. Number the jobs and bind them to generators
	jobs := plan.Jobs()
	tasks := make([]Task, len(jobs))
	for i, job := range jobs {
		tasks[i] = Task{
			Job:       job,
			Generator: generators[job.Model.Key()],
			Request: domain.GenerationRequest{
				Prompt:          job.Prompt,
				MaxOutputTokens: maxTokens,
			},
		}
	}

	run := domain.Run{
		ID:        uuid.NewString(),
		Status:    domain.RunStatusRunning,
		Planned:   len(jobs),
		StartedAt: s.now(),
	}
	s.saveRun(ctx, run)

	logger.Section("Generation")
	logger.Info("Run %s: %d jobs across %d models (policy %s)", run.ID, len(jobs), len(plan.Models), policy)

	// 3. Execute
	done := 0
	outcomes, execErr := s.executor.Run(ctx, tasks, ExecuteOptions{
		FailFast: policy == domain.FailurePolicyFailFast,
		OnDone: func(Outcome) {
			done++
			if opts.Progress != nil {
				opts.Progress(done, len(tasks))
			}
		},
	})

	report := &driving.RunReport{}
	for _, o := range outcomes {
		if !o.Result.OK() {
			report.Failures = append(report.Failures, o.Job.Index)
		}
	}
	run.Failed = len(report.Failures)

	if execErr != nil {
		s.recordOutcomes(ctx, run.ID, outcomes, nil)
		return s.fail(ctx, report, run, fmt.Errorf("generation aborted: %w", execErr))
	}

	// 4. Apply the failure policy and persist
	docs := make([]domain.GeneratedDocument, 0, len(outcomes))
	docJobs := make([]int, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Result.OK() && policy == domain.FailurePolicySkip {
			logger.Debug("skipping failed job %d (%s)", o.Job.Index, o.Job.Model)
			continue
		}
		docs = append(docs, domain.GeneratedDocument{
			Model:  o.Job.Model.Model,
			Genre:  o.Job.Genre,
			Prompt: o.Job.Prompt,
			Text:   o.Result.TextOrEmpty(),
		})
		docJobs = append(docJobs, o.Job.Index)
	}

	summary, err := s.writer.Save(ctx, docs)
	report.Corpus = summary
	run.CorpusLocation = summary.Location
	run.MetadataPath = summary.MetadataPath
	run.Saved = summary.Count()

	docIDs := make(map[int]string, len(summary.Rows))
	for i, row := range summary.Rows {
		docIDs[docJobs[i]] = row.DocID
	}
	s.recordOutcomes(ctx, run.ID, outcomes, docIDs)

	if err != nil {
		return s.fail(ctx, report, run, fmt.Errorf("save corpus: %w", err))
	}

	run.Status = domain.RunStatusCompleted
	run.FinishedAt = s.now()
	s.saveRun(ctx, run)
	report.Run = run

	logger.Info("Run %s completed: %d saved, %d failed", run.ID, run.Saved, run.Failed)
	return report, nil
}

func (s *GenerationService) fail(
	ctx context.Context,
	report *driving.RunReport,
	run domain.Run,
	err error,
) (*driving.RunReport, error) {
	run.Status = domain.RunStatusFailed
	run.Error = err.Error()
	run.FinishedAt = s.now()
	s.saveRun(context.WithoutCancel(ctx), run)
	report.Run = run
	return report, err
}

func (s *GenerationService) saveRun(ctx context.Context, run domain.Run) {
	if s.runStore == nil {
		return
	}
	if err := s.runStore.SaveRun(ctx, run); err != nil {
		logger.Warn("Failed to record run %s: %v", run.ID, err)
	}
}

func (s *GenerationService) recordOutcomes(ctx context.Context, runID string, outcomes []Outcome, docIDs map[int]string) {
	if s.runStore == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, o := range outcomes {
		record := domain.DocumentRecord{
			RunID:    runID,
			Index:    o.Job.Index,
			DocID:    docIDs[o.Job.Index],
			Provider: o.Job.Model.Provider,
			Model:    o.Job.Model.Model,
			Genre:    o.Job.Genre,
			OK:       o.Result.OK(),
			Attempts: o.Result.Attempts,
			Duration: o.Duration,
			Chars:    len(o.Result.Text),
		}
		if o.Result.Err != nil {
			record.Error = o.Result.Err.Error()
		}
		if err := s.runStore.SaveRecord(ctx, record); err != nil {
			logger.Warn("Failed to record job %d of run %s: %v", o.Job.Index, runID, err)
			return
		}
	}
}

// Sample answers prompts with the model in spec through GenerateBatch.
// Failed prompts are reported in their results.
func (s *GenerationService) Sample(
	ctx context.Context,
	spec domain.ModelSpec,
	prompts []string,
	maxTokens int,
) ([]domain.GenerationResult, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("%w: no prompts", domain.ErrInvalidInput)
	}
	if maxTokens <= 0 {
		maxTokens = s.settings.Generation.MaxTokens
	}

	gen, err := s.factory.Create(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("create generator %s: %w", spec, err)
	}
	if c, ok := gen.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	return GenerateBatch(ctx, gen, prompts, maxTokens, BatchOptions{})
}
