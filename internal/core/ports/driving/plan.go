package driving

import "github.com/custodia-labs/llmprint/internal/core/domain"

// PlanService reads generation plans.
type PlanService interface {
	// Load reads and validates the plan at path.
	Load(path string) (domain.Plan, error)
}
