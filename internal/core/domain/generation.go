package domain

// GenerationRequest is a single prompt sent to a text generator.
type GenerationRequest struct {
	// Prompt is the user message.
	Prompt string

	// MaxOutputTokens caps the completion length.
	MaxOutputTokens int

	// Temperature controls randomness. Nil means the generator's default.
	Temperature *float64
}

// GenerationResult is the outcome of one prompt within a batch.
// Exactly one of Text or Err is meaningful.
type GenerationResult struct {
	// Index is the position of the prompt in the batch.
	Index int

	// Text is the trimmed completion.
	Text string

	// Err is non-nil when the call failed.
	Err error

	// Attempts is the number of calls made, including retries.
	Attempts int
}

// OK returns true if the generation succeeded.
func (r GenerationResult) OK() bool {
	return r.Err == nil
}

// TextOrEmpty returns the text, or the empty-string sentinel on failure.
func (r GenerationResult) TextOrEmpty() string {
	if r.Err != nil {
		return ""
	}
	return r.Text
}

// GeneratedDocument is a generated text waiting to be persisted.
type GeneratedDocument struct {
	// Model is the identifier of the generating model.
	Model string

	// Genre is the category label assigned at generation time.
	Genre string

	// Prompt is the originating prompt.
	Prompt string

	// Text is the generated body.
	Text string
}

// FailurePolicy decides what happens to a document whose generation failed.
type FailurePolicy string

// Available failure policies.
const (
	// FailurePolicyEmpty keeps the document with an empty body.
	FailurePolicyEmpty FailurePolicy = "empty"

	// FailurePolicySkip drops the document from the corpus.
	FailurePolicySkip FailurePolicy = "skip"

	// FailurePolicyFailFast aborts the batch on the first failure.
	FailurePolicyFailFast FailurePolicy = "fail_fast"
)

// IsValid returns true if the policy is recognised.
func (p FailurePolicy) IsValid() bool {
	switch p {
	case FailurePolicyEmpty, FailurePolicySkip, FailurePolicyFailFast:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p FailurePolicy) String() string {
	return string(p)
}
