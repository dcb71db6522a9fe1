package services

import (
	"fmt"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
)

// Ensure PlanService implements the interface.
var _ driving.PlanService = (*PlanService)(nil)

// PlanService loads generation plans through a PlanLoader.
type PlanService struct {
	loader driven.PlanLoader
}

// NewPlanService creates a plan service.
func NewPlanService(loader driven.PlanLoader) *PlanService {
	return &PlanService{loader: loader}
}

// Load reads the plan at path and validates it.
func (s *PlanService) Load(path string) (domain.Plan, error) {
	if s.loader == nil {
		return domain.Plan{}, fmt.Errorf("plan loader: %w", domain.ErrNotConfigured)
	}
	plan, err := s.loader.LoadPlan(path)
	if err != nil {
		return domain.Plan{}, err
	}
	if err := plan.Validate(); err != nil {
		return domain.Plan{}, fmt.Errorf("plan %q: %w", path, err)
	}
	return plan, nil
}
