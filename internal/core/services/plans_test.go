package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

type stubPlanLoader struct {
	plan domain.Plan
	err  error
}

func (l *stubPlanLoader) LoadPlan(_ string) (domain.Plan, error) {
	return l.plan, l.err
}

func TestPlanService_Load(t *testing.T) {
	plan := domain.Plan{
		Models: []domain.ModelSpec{{Provider: domain.ProviderOpenAI, Model: "gpt-4o-mini"}},
		Genres: []domain.Genre{{Name: "news", Prompts: []string{"Write a headline."}}},
	}
	service := NewPlanService(&stubPlanLoader{plan: plan})

	got, err := service.Load("plan.yaml")

	require.NoError(t, err)
	assert.Equal(t, plan, got)
}

func TestPlanService_Load_Invalid(t *testing.T) {
	service := NewPlanService(&stubPlanLoader{plan: domain.Plan{}})

	_, err := service.Load("plan.yaml")

	assert.ErrorIs(t, err, domain.ErrPlanNoModels)
}

func TestPlanService_Load_LoaderError(t *testing.T) {
	loadErr := &domain.MissingInputError{Path: "plan.yaml", Err: errors.New("no such file")}
	service := NewPlanService(&stubPlanLoader{err: loadErr})

	_, err := service.Load("plan.yaml")

	assert.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestPlanService_NoLoader(t *testing.T) {
	_, err := NewPlanService(nil).Load("plan.yaml")

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
