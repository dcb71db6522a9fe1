package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// Default rate-limit backoff bounds.
const (
	DefaultBaseBackoff = time.Second
	DefaultMaxBackoff  = 30 * time.Second
)

// Task is one job bound to the generator that will run it.
type Task struct {
	Job       domain.Job
	Generator driven.TextGenerator
	Request   domain.GenerationRequest
}

// Outcome is the result of a task.
type Outcome struct {
	Job      domain.Job
	Result   domain.GenerationResult
	Duration time.Duration
}

// ExecuteOptions tunes a single Executor.Run call.
type ExecuteOptions struct {
	// FailFast cancels outstanding tasks after the first failure.
	FailFast bool

	// OnDone is called after each task completes. Calls are serialised.
	OnDone func(Outcome)
}

// ExecutorConfig holds retry backoff bounds.
type ExecutorConfig struct {
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// Executor runs generation tasks with a bounded worker pool and a token
// bucket per provider. Calls rejected for rate reasons are retried with
// exponential backoff; no other failure is retried.
type Executor struct {
	settings    *domain.Settings
	baseBackoff time.Duration
	maxBackoff  time.Duration

	mu       sync.Mutex
	limiters map[domain.Provider]*ProviderLimiter
}

// NewExecutor creates an executor using the provider limits in settings.
func NewExecutor(settings *domain.Settings, cfg ExecutorConfig) *Executor {
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = DefaultBaseBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = cfg.BaseBackoff
	}
	return &Executor{
		settings:    settings,
		baseBackoff: cfg.BaseBackoff,
		maxBackoff:  cfg.MaxBackoff,
		limiters:    make(map[domain.Provider]*ProviderLimiter),
	}
}

// Run executes tasks and returns one outcome per task, in task order,
// whatever order they complete in.
//
// Tasks for different providers run in parallel; tasks for one provider share
// that provider's worker count and rate limit. With opts.FailFast the first
// failure cancels the remaining tasks and is returned as the error. A
// cancelled context also ends the run; tasks that never started carry the
// cancellation cause as their error.
func (e *Executor) Run(ctx context.Context, tasks []Task, opts ExecuteOptions) ([]Outcome, error) {
	outcomes := make([]Outcome, len(tasks))
	started := make([]bool, len(tasks))

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	queues := make(map[domain.Provider][]int)
	var providers []domain.Provider
	for i, task := range tasks {
		p := task.Generator.Provider()
		if _, ok := queues[p]; !ok {
			providers = append(providers, p)
		}
		queues[p] = append(queues[p], i)
	}

	var (
		wg     sync.WaitGroup
		doneMu sync.Mutex
	)
	finish := func(i int, o Outcome) {
		doneMu.Lock()
		defer doneMu.Unlock()

		outcomes[i] = o
		if opts.OnDone != nil {
			opts.OnDone(o)
		}
		if opts.FailFast && !o.Result.OK() {
			cancel(fmt.Errorf("job %d (%s): %w", o.Job.Index, o.Job.Model, o.Result.Err))
		}
	}

	for _, p := range providers {
		ps := e.settings.Provider(p)
		limiter := e.limiter(p, ps)
		indexes := queues[p]
		queue := make(chan int)

		workers := min(ps.Workers, len(indexes))
		logger.Debug("%s: %d tasks, %d workers, %.2f req/s", p, len(indexes), workers, ps.RequestsPerSecond)

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range queue {
					if ctx.Err() != nil {
						continue
					}
					started[i] = true
					finish(i, e.execute(ctx, tasks[i], limiter, ps.MaxAttempts))
				}
			}()
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(queue)
			for _, i := range indexes {
				select {
				case queue <- i:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()

	cause := context.Cause(ctx)
	if cause == nil {
		return outcomes, nil
	}
	for i, task := range tasks {
		if !started[i] {
			outcomes[i] = Outcome{
				Job:    task.Job,
				Result: domain.GenerationResult{Index: task.Job.Index, Err: cause},
			}
		}
	}
	return outcomes, cause
}

func (e *Executor) execute(ctx context.Context, task Task, limiter *ProviderLimiter, maxAttempts int) Outcome {
	start := time.Now()
	result := domain.GenerationResult{Index: task.Job.Index}

	for attempt := 1; ; attempt++ {
		result.Attempts = attempt
		if err := limiter.Wait(ctx); err != nil {
			result.Text, result.Err = "", err
			break
		}

		text, err := task.Generator.Generate(ctx, task.Request)
		result.Text, result.Err = text, err
		if err == nil || !domain.IsRateLimited(err) || attempt >= maxAttempts {
			break
		}

		delay := e.backoff(attempt, err)
		logger.Warn("%s rate limited on job %d, retrying in %s (attempt %d/%d)",
			task.Job.Model, task.Job.Index, delay, attempt+1, maxAttempts)
		limiter.Pause(delay)
	}

	return Outcome{Job: task.Job, Result: result, Duration: time.Since(start)}
}

// backoff returns the provider's Retry-After when given, otherwise an
// exponential delay with up to 50% jitter, capped at maxBackoff.
func (e *Executor) backoff(attempt int, err error) time.Duration {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) && genErr.RetryAfter > 0 {
		return min(time.Duration(genErr.RetryAfter)*time.Second, e.maxBackoff)
	}

	d := e.baseBackoff << (attempt - 1)
	if d <= 0 || d > e.maxBackoff {
		d = e.maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d)/2 + 1))
	return min(d, e.maxBackoff)
}

func (e *Executor) limiter(p domain.Provider, ps domain.ProviderSettings) *ProviderLimiter {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.limiters[p]
	if !ok {
		l = NewProviderLimiter(ps.RequestsPerSecond, ps.Burst)
		e.limiters[p] = l
	}
	return l
}
