package driven

import "github.com/custodia-labs/llmprint/internal/core/domain"

// PlanLoader reads a generation plan.
type PlanLoader interface {
	LoadPlan(path string) (domain.Plan, error)
}
