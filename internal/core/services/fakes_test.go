package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// fakeGenerator answers prompts through respond and counts calls.
type fakeGenerator struct {
	provider domain.Provider
	model    string
	respond  func(req domain.GenerationRequest, call int) (string, error)
	delay    time.Duration

	mu      sync.Mutex
	prompts []string
	calls   int

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	closed      atomic.Bool
}

func newEchoGenerator(provider domain.Provider, model string) *fakeGenerator {
	return &fakeGenerator{
		provider: provider,
		model:    model,
		respond: func(req domain.GenerationRequest, _ int) (string, error) {
			return "answer to " + req.Prompt, nil
		},
	}
}

func (g *fakeGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		peak := g.maxInFlight.Load()
		if n <= peak || g.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	g.mu.Lock()
	g.calls++
	call := g.calls
	g.prompts = append(g.prompts, req.Prompt)
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.delay):
		}
	}
	return g.respond(req, call)
}

func (g *fakeGenerator) Provider() domain.Provider { return g.provider }

func (g *fakeGenerator) ModelName() string { return g.model }

func (g *fakeGenerator) Close() error {
	g.closed.Store(true)
	return nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// fakeBatchGenerator implements driven.BatchGenerator.
type fakeBatchGenerator struct {
	*fakeGenerator
	batchCalls int
}

func (g *fakeBatchGenerator) GenerateBatch(
	_ context.Context,
	prompts []string,
	_ int,
) ([]domain.GenerationResult, error) {
	g.batchCalls++
	results := make([]domain.GenerationResult, len(prompts))
	for i, p := range prompts {
		results[i] = domain.GenerationResult{Index: i, Text: "batched " + p, Attempts: 1}
		if p == "bad" {
			results[i] = domain.GenerationResult{Index: i, Err: domain.NewGenerationError(g.provider, g.model, fmt.Errorf("refused")), Attempts: 1}
		}
	}
	return results, nil
}

// fakeFactory hands out pre-built generators keyed by model name.
type fakeFactory struct {
	generators map[string]*fakeGenerator
	err        error
}

func (f *fakeFactory) Create(_ context.Context, spec domain.ModelSpec) (driven.TextGenerator, error) {
	if f.err != nil {
		return nil, f.err
	}
	gen, ok := f.generators[spec.Model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, spec)
	}
	return gen, nil
}

func generationFailure(provider domain.Provider, model string) error {
	return domain.NewGenerationError(provider, model, fmt.Errorf("upstream 500"))
}

func rateLimitFailure(provider domain.Provider, model string) error {
	return domain.NewGenerationError(provider, model, domain.ErrRateLimited)
}

func fastSettings() *domain.Settings {
	settings := domain.DefaultSettings()
	for _, p := range domain.Providers() {
		settings.Providers[p] = domain.ProviderSettings{
			APIKey:            "test",
			Workers:           1,
			RequestsPerSecond: 10000,
			Burst:             100,
			MaxAttempts:       3,
		}
	}
	return &settings
}

func fastExecutor(settings *domain.Settings) *Executor {
	return NewExecutor(settings, ExecutorConfig{BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond})
}
