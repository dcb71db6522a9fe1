package driven

import (
	"context"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// TextGenerator produces text for a single prompt from one provider/model pair.
//
// Implementations include:
//   - OpenAI
//   - Anthropic
//   - Together AI
//   - Mistral
//   - Gemini
//
// Generate never panics. On failure it returns an empty string and a
// *domain.GenerationError; callers choose whether that becomes a sentinel,
// a skipped document or an aborted run.
type TextGenerator interface {
	// Generate sends one user-role prompt and returns the trimmed completion.
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)

	// Provider returns the backend this generator talks to.
	Provider() domain.Provider

	// ModelName returns the model identifier sent with each request.
	ModelName() string
}

// BatchGenerator is implemented by generators with a native batched call.
// Result i must correspond to prompts[i].
type BatchGenerator interface {
	TextGenerator

	// GenerateBatch answers every prompt. Per-prompt failures are reported in
	// the results; the returned error is reserved for whole-batch failures.
	GenerateBatch(ctx context.Context, prompts []string, maxOutputTokens int) ([]domain.GenerationResult, error)
}

// GeneratorFactory creates a generator for one model of a plan.
type GeneratorFactory interface {
	Create(ctx context.Context, spec domain.ModelSpec) (TextGenerator, error)
}
