package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedProvider indicates an unknown generation backend.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrNotConfigured indicates an optional component was not set up.
	ErrNotConfigured = errors.New("not configured")

	// Generation Errors.

	// ErrGeneration indicates a provider call could not produce text.
	// Adapters return it wrapped in a *GenerationError.
	ErrGeneration = errors.New("generation failed")

	// ErrRateLimited indicates the provider rejected the call for rate reasons.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the provider rejected the credential.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrMalformedResponse indicates the provider answered with no usable completion.
	ErrMalformedResponse = errors.New("malformed response")

	// Corpus and Merge Errors.

	// ErrMissingInput indicates a required input path does not exist or is unreadable.
	ErrMissingInput = errors.New("missing input")

	// ErrNoDocuments indicates extraction or merge was invoked on an empty input set.
	ErrNoDocuments = errors.New("no documents")
)

// GenerationError describes a failed provider call.
type GenerationError struct {
	// Provider is the backend that failed.
	Provider Provider

	// Model is the model identifier used for the call.
	Model string

	// RetryAfter is the provider's requested wait in seconds (rate limiting only).
	RetryAfter int

	// Err is the underlying cause.
	Err error
}

// NewGenerationError wraps err as a generation failure for provider/model.
func NewGenerationError(provider Provider, model string, err error) *GenerationError {
	return &GenerationError{Provider: provider, Model: model, Err: err}
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s/%s: generation failed", e.Provider, e.Model)
	}
	return fmt.Sprintf("%s/%s: generation failed: %v", e.Provider, e.Model, e.Err)
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// MissingInputError names an input path that could not be read.
type MissingInputError struct {
	// Path is the path that was requested.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *MissingInputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("missing input: %s", e.Path)
	}
	return fmt.Sprintf("missing input: %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMissingInput.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// IsRateLimited reports whether err stems from provider rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
