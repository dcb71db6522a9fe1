// Package cli provides the llmprint command line interface.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// version is set by Execute.
var version = "dev"

var verbose bool

// GenerationBuilder creates a generation service for the effective settings.
// It runs after command line overrides have been applied.
type GenerationBuilder func(ctx context.Context, settings *domain.Settings) (driving.GenerationService, error)

// FileWaiter blocks until path holds a complete file or timeout expires.
type FileWaiter func(ctx context.Context, path string, timeout time.Duration) error

// Services holds the core services the commands call into.
// Any field may be nil; commands that need it then fail with a clear error.
type Services struct {
	Settings   driving.SettingsService
	Plans      driving.PlanService
	Generation GenerationBuilder
	Extraction driving.ExtractionService
	Merge      driving.MergeService
	Runs       driving.RunService
	WaitFor    FileWaiter
}

var (
	settingsService   driving.SettingsService
	planService       driving.PlanService
	generationBuilder GenerationBuilder
	extractionService driving.ExtractionService
	mergeService      driving.MergeService
	runService        driving.RunService
	waitForFile       FileWaiter
)

var rootCmd = &cobra.Command{
	Use:   "llmprint",
	Short: "Build LLM text corpora for stylometric model attribution",
	Long: `llmprint generates a labelled text corpus from several LLM providers,
hands it to a stylometric feature extractor and joins the resulting
feature table with the corpus metadata for model attribution.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	settingsService = s.Settings
	planService = s.Plans
	generationBuilder = s.Generation
	extractionService = s.Extraction
	mergeService = s.Merge
	runService = s.Runs
	waitForFile = s.WaitFor
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, ver string) error {
	if ver != "" {
		version = ver
	}
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or a background context
// when the command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
