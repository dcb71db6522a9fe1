package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure PlanLoader implements the interface.
var _ driven.PlanLoader = (*PlanLoader)(nil)

// planFile is the YAML layout of a generation plan.
type planFile struct {
	MaxTokens int         `yaml:"max_tokens"`
	Repeats   int         `yaml:"repeats"`
	Models    []modelFile `yaml:"models"`
	Genres    []genreFile `yaml:"genres"`
}

type modelFile struct {
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

type genreFile struct {
	Name    string   `yaml:"name"`
	Prompts []string `yaml:"prompts"`
}

// PlanLoader reads generation plans from YAML files.
type PlanLoader struct{}

// NewPlanLoader creates a plan loader.
func NewPlanLoader() *PlanLoader {
	return &PlanLoader{}
}

// LoadPlan parses and validates the plan at path.
// Unknown fields are rejected so that typos do not silently drop settings.
func (l *PlanLoader) LoadPlan(path string) (domain.Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Plan{}, &domain.MissingInputError{Path: path, Err: err}
	}

	plan, err := ParsePlan(b)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("plan %q: %w", path, err)
	}
	return plan, nil
}

// ParsePlan decodes and validates YAML plan content.
func ParsePlan(b []byte) (domain.Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var pf planFile
	if err := dec.Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return domain.Plan{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	plan := domain.Plan{
		MaxTokens: pf.MaxTokens,
		Repeats:   pf.Repeats,
	}
	for _, m := range pf.Models {
		plan.Models = append(plan.Models, domain.ModelSpec{
			Provider:    domain.Provider(m.Provider),
			Model:       m.Model,
			Temperature: m.Temperature,
		})
	}
	for _, g := range pf.Genres {
		plan.Genres = append(plan.Genres, domain.Genre{Name: g.Name, Prompts: g.Prompts})
	}

	if err := plan.Validate(); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}
