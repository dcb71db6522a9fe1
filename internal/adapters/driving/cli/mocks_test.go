package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings *domain.Settings
	getErr   error
	setErr   error
	set      map[string]any
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultSettings()
	return &mockSettingsService{settings: &s, set: make(map[string]any)}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := *m.settings
	s.Providers = make(map[domain.Provider]domain.ProviderSettings, len(m.settings.Providers))
	for p, ps := range m.settings.Providers {
		s.Providers[p] = ps
	}
	return &s, nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) ConfigPath() string {
	return "/home/test/.llmprint/config.toml"
}

// mockPlanService implements driving.PlanService for testing.
type mockPlanService struct {
	plan domain.Plan
	err  error
	path string
}

func (m *mockPlanService) Load(path string) (domain.Plan, error) {
	m.path = path
	return m.plan, m.err
}

// mockGenerationService implements driving.GenerationService for testing.
type mockGenerationService struct {
	report *driving.RunReport
	err    error
	opts   driving.RunOptions
	plan   domain.Plan

	results []domain.GenerationResult
	spec    domain.ModelSpec
	prompts []string
}

func (m *mockGenerationService) Run(_ context.Context, plan domain.Plan, opts driving.RunOptions) (*driving.RunReport, error) {
	m.plan = plan
	m.opts = opts
	return m.report, m.err
}

func (m *mockGenerationService) Sample(
	_ context.Context,
	spec domain.ModelSpec,
	prompts []string,
	_ int,
) ([]domain.GenerationResult, error) {
	m.spec = spec
	m.prompts = prompts
	return m.results, m.err
}

// mockExtractionService implements driving.ExtractionService for testing.
type mockExtractionService struct {
	ids       []string
	err       error
	corpusDir string
	outPath   string
}

func (m *mockExtractionService) Extract(_ context.Context, corpusDir, outputPath string) ([]string, error) {
	m.corpusDir = corpusDir
	m.outPath = outputPath
	return m.ids, m.err
}

// mockMergeService implements driving.MergeService for testing.
type mockMergeService struct {
	table        *domain.Table
	err          error
	metadataPath string
	featuresPath string
	exported     string
}

func (m *mockMergeService) Merge(_ context.Context, metadataPath, featuresPath string) (*domain.Table, error) {
	m.metadataPath = metadataPath
	m.featuresPath = featuresPath
	return m.table, m.err
}

func (m *mockMergeService) Export(_ *domain.Table, path string) error {
	m.exported = path
	return nil
}

// mockRunService implements driving.RunService for testing.
type mockRunService struct {
	runs    []domain.Run
	records []domain.DocumentRecord
	err     error
}

func (m *mockRunService) List(_ context.Context, limit int) ([]domain.Run, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.runs) > limit {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *mockRunService) Get(_ context.Context, id string) (*domain.Run, []domain.DocumentRecord, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], m.records, nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

func samplePlan() domain.Plan {
	return domain.Plan{
		Models: []domain.ModelSpec{
			{Provider: domain.ProviderOpenAI, Model: "gpt-4o-mini"},
			{Provider: domain.ProviderMistral, Model: "mistral-small"},
		},
		Genres: []domain.Genre{
			{Name: "news", Prompts: []string{"Write a headline.", "Write a lede."}},
		},
	}
}

// setupServices installs s and returns a function restoring the previous
// services and command flags.
func setupServices(s Services) func() {
	old := Services{
		Settings:   settingsService,
		Plans:      planService,
		Generation: generationBuilder,
		Extraction: extractionService,
		Merge:      mergeService,
		Runs:       runService,
		WaitFor:    waitForFile,
	}
	SetServices(s)
	return func() {
		SetServices(old)
		resetFlags()
	}
}

func resetFlags() {
	generatePlanPath, generateOutDir, generateMetadata, generatePolicy = "", "", "", ""
	generateWorkers = 0
	generateFailFast = false
	extractCorpusDir, extractOutPath = "", ""
	mergeMetadataPath, mergeFeaturesPath, mergeOutPath = "", "", ""
	mergeWait = time.Duration(0)
	runsLimit = 20
	runsJSON = false
	sampleModel = ""
	sampleMaxTokens = 0
	sampleTemperature = 0
	sampleCmd.Flags().Lookup("temperature").Changed = false
}
