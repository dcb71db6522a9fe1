package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// BatchOptions tunes GenerateBatch.
type BatchOptions struct {
	// FailFast stops at the first failed prompt.
	FailFast bool
}

// GenerateBatch answers every prompt with gen and returns one result per
// prompt, result i belonging to prompts[i].
//
// Generators implementing driven.BatchGenerator handle the whole batch
// themselves; others are called once per prompt, in order. A failed prompt
// is reported in its result and does not stop the others unless
// opts.FailFast is set. With FailFast the results gathered so far are
// returned together with the first failure.
func GenerateBatch(
	ctx context.Context,
	gen driven.TextGenerator,
	prompts []string,
	maxOutputTokens int,
	opts BatchOptions,
) ([]domain.GenerationResult, error) {
	if bg, ok := gen.(driven.BatchGenerator); ok {
		results, err := bg.GenerateBatch(ctx, prompts, maxOutputTokens)
		if err != nil {
			return results, fmt.Errorf("batch %s/%s: %w", gen.Provider(), gen.ModelName(), err)
		}
		if opts.FailFast {
			for i, r := range results {
				if !r.OK() {
					return results[:i+1], fmt.Errorf("prompt %d: %w", i, r.Err)
				}
			}
		}
		return results, nil
	}

	results := make([]domain.GenerationResult, 0, len(prompts))
	for i, prompt := range prompts {
		text, err := gen.Generate(ctx, domain.GenerationRequest{
			Prompt:          prompt,
			MaxOutputTokens: maxOutputTokens,
		})
		results = append(results, domain.GenerationResult{Index: i, Text: text, Err: err, Attempts: 1})

		if err != nil {
			logger.Debug("prompt %d for %s/%s failed: %v", i, gen.Provider(), gen.ModelName(), err)
			if opts.FailFast {
				return results, fmt.Errorf("prompt %d: %w", i, err)
			}
		}
	}
	return results, nil
}
