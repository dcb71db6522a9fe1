package domain

import (
	"errors"
	"fmt"
)

// Plan validation errors.
var (
	ErrPlanNoModels  = errors.New("plan: no models")
	ErrPlanNoGenres  = errors.New("plan: no genres")
	ErrPlanNoPrompts = errors.New("plan: genre has no prompts")
)

// ModelSpec selects one model on one provider.
type ModelSpec struct {
	// Provider is the backend serving the model.
	Provider Provider

	// Model is the provider's model identifier.
	Model string

	// Temperature overrides the default when set. Zero is a valid value.
	Temperature *float64
}

// String returns provider/model.
func (m ModelSpec) String() string {
	return fmt.Sprintf("%s/%s", m.Provider, m.Model)
}

// Key identifies the spec by value, temperature override included.
func (m ModelSpec) Key() string {
	if m.Temperature == nil {
		return m.String()
	}
	return fmt.Sprintf("%s@%g", m, *m.Temperature)
}

// Genre is a labelled set of prompts.
type Genre struct {
	Name    string
	Prompts []string
}

// Plan describes the corpus to generate: every model answers every prompt
// of every genre, Repeats times.
type Plan struct {
	Models    []ModelSpec
	Genres    []Genre
	MaxTokens int
	Repeats   int
}

// Validate checks the plan is complete.
func (p Plan) Validate() error {
	if len(p.Models) == 0 {
		return ErrPlanNoModels
	}
	for _, m := range p.Models {
		if !m.Provider.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnsupportedProvider, m.Provider)
		}
		if m.Model == "" {
			return fmt.Errorf("%w: model identifier is empty for %s", ErrInvalidInput, m.Provider)
		}
	}
	if len(p.Genres) == 0 {
		return ErrPlanNoGenres
	}
	for _, g := range p.Genres {
		if g.Name == "" {
			return fmt.Errorf("%w: genre name is empty", ErrInvalidInput)
		}
		if len(g.Prompts) == 0 {
			return fmt.Errorf("%w: %s", ErrPlanNoPrompts, g.Name)
		}
	}
	if p.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must not be negative", ErrInvalidInput)
	}
	return nil
}

// Job is one planned generation call.
type Job struct {
	// Index is the sequential corpus index, fixed before any call runs.
	Index int

	// Model is the target model.
	Model ModelSpec

	// Genre is the genre label.
	Genre string

	// Prompt is the prompt text.
	Prompt string
}

// Jobs expands the plan in model, genre, prompt, repeat order and numbers
// the jobs sequentially from zero.
func (p Plan) Jobs() []Job {
	repeats := p.Repeats
	if repeats <= 0 {
		repeats = 1
	}

	var jobs []Job
	for _, m := range p.Models {
		for _, g := range p.Genres {
			for _, prompt := range g.Prompts {
				for r := 0; r < repeats; r++ {
					jobs = append(jobs, Job{
						Index:  len(jobs),
						Model:  m,
						Genre:  g.Name,
						Prompt: prompt,
					})
				}
			}
		}
	}
	return jobs
}
