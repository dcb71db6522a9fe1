package httpjson

import (
	"errors"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// Failure logs a failed provider call and wraps it as a *domain.GenerationError.
// Rate-limit hints carried by a *StatusError are preserved.
func Failure(provider domain.Provider, model string, err error) *domain.GenerationError {
	logger.Warn("%s generation error (model %s): %v", provider, model, err)

	genErr := domain.NewGenerationError(provider, model, err)
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		genErr.RetryAfter = statusErr.RetryAfter
	}
	return genErr
}
