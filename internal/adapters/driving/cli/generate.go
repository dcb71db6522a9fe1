package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
)

var (
	generatePlanPath string
	generateOutDir   string
	generateMetadata string
	generateWorkers  int
	generatePolicy   string
	generateFailFast bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a labelled corpus from a plan",
	Long: `Runs every prompt of every genre in the plan against every model and
writes one text file per answer plus a metadata table.

Documents are numbered before any request is sent, so file names do not
depend on which provider answers first. Failed generations follow the
failure policy: "empty" keeps an empty document, "skip" leaves it out and
"fail_fast" aborts the run without writing anything.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generatePlanPath, "plan", "p", "", "plan file (YAML)")
	generateCmd.Flags().StringVarP(&generateOutDir, "out", "o", "", "local corpus directory (overrides corpus.dir and corpus.sink)")
	generateCmd.Flags().StringVar(&generateMetadata, "metadata", "", "metadata table path (overrides corpus.metadata)")
	generateCmd.Flags().IntVarP(&generateWorkers, "workers", "w", 0, "concurrent requests per provider (overrides providers.<name>.workers)")
	generateCmd.Flags().StringVar(&generatePolicy, "policy", "", "failure policy: empty, skip or fail_fast")
	generateCmd.Flags().BoolVar(&generateFailFast, "fail-fast", false, "abort on the first failed generation")
	_ = generateCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if planService == nil {
		return errors.New("plan service not configured")
	}
	if generationBuilder == nil {
		return errors.New("generation service not configured")
	}

	ctx := commandContext(cmd)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	policy, err := applyGenerateOverrides(settings)
	if err != nil {
		return err
	}

	plan, err := planService.Load(generatePlanPath)
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}

	service, err := generationBuilder(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to set up generation: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Printf("Generating %d documents with %d models...\n", len(plan.Jobs()), len(plan.Models))

	report, err := service.Run(ctx, plan, driving.RunOptions{
		FailurePolicy: policy,
		Progress:      progressPrinter(cmd.ErrOrStderr()),
	})
	if err != nil {
		if report != nil && report.Run.ID != "" {
			cmd.Printf("%s run %s\n", styled(out, errorStyle, "Failed"), report.Run.ID)
		}
		return fmt.Errorf("generation failed: %w", err)
	}

	printRunReport(cmd, report)
	return nil
}

// applyGenerateOverrides copies command line flags into settings and
// returns the failure policy to run with (empty means the configured one).
func applyGenerateOverrides(settings *domain.Settings) (domain.FailurePolicy, error) {
	if generateOutDir != "" {
		settings.Corpus.Dir = generateOutDir
		settings.Corpus.Sink = domain.SinkLocal
	}
	if generateMetadata != "" {
		settings.Corpus.MetadataPath = generateMetadata
	}
	if generateWorkers < 0 {
		return "", fmt.Errorf("%w: --workers must not be negative", domain.ErrInvalidInput)
	}
	if generateWorkers > 0 {
		if settings.Providers == nil {
			settings.Providers = make(map[domain.Provider]domain.ProviderSettings)
		}
		for _, p := range domain.Providers() {
			ps := settings.Providers[p]
			ps.Workers = generateWorkers
			settings.Providers[p] = ps
		}
	}

	if generateFailFast {
		return domain.FailurePolicyFailFast, nil
	}
	policy := domain.FailurePolicy(generatePolicy)
	if policy != "" && !policy.IsValid() {
		return "", fmt.Errorf("%w: unknown failure policy %q", domain.ErrInvalidInput, generatePolicy)
	}
	return policy, nil
}

// progressPrinter returns a progress callback that redraws one status line
// on w. Nothing is printed when w is not a terminal.
func progressPrinter(w io.Writer) func(done, total int) {
	if !isTerminal(w) {
		return nil
	}
	return func(done, total int) {
		fmt.Fprintf(w, "\r  %s %d/%d", styled(w, mutedStyle, "generated"), done, total)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}

func printRunReport(cmd *cobra.Command, report *driving.RunReport) {
	out := cmd.OutOrStdout()
	run := report.Run

	cmd.Println()
	cmd.Println(styled(out, titleStyle, "Run "+run.ID))
	cmd.Printf("  Documents: %d saved of %d planned\n", run.Saved, run.Planned)
	if len(report.Failures) > 0 {
		cmd.Printf("  Failures:  %s (jobs %s)\n",
			styled(out, warningStyle, strconv.Itoa(len(report.Failures))), joinInts(report.Failures))
	} else {
		cmd.Printf("  Failures:  0\n")
	}
	cmd.Printf("  Corpus:    %s\n", report.Corpus.Location)
	cmd.Printf("  Metadata:  %s\n", report.Corpus.MetadataPath)
	cmd.Println(styled(out, successStyle, "Corpus generated successfully."))
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
