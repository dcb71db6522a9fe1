package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

var (
	sampleModel       string
	sampleMaxTokens   int
	sampleTemperature float64
)

var sampleCmd = &cobra.Command{
	Use:   "sample [prompt...]",
	Short: "Try prompts against one model without writing a corpus",
	Long: `Sends each prompt to a single model, in order, and prints the answers.
Nothing is written to the corpus or the run ledger. Useful for checking
credentials and prompt wording before a full run.`,
	Example: `  llmprint sample --model openai/gpt-4o-mini "Write a short news headline."`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSample,
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleModel, "model", "m", "", "provider/model, e.g. anthropic/claude-3-5-haiku-latest")
	sampleCmd.Flags().IntVar(&sampleMaxTokens, "max-tokens", 0, "completion cap (defaults to generation.max_tokens)")
	sampleCmd.Flags().Float64Var(&sampleTemperature, "temperature", 0, "sampling temperature (defaults to generation.temperature)")
	_ = sampleCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if generationBuilder == nil {
		return errors.New("generation service not configured")
	}

	spec, err := parseModelSpec(sampleModel)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("temperature") {
		temperature := sampleTemperature
		spec.Temperature = &temperature
	}

	ctx := commandContext(cmd)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	service, err := generationBuilder(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to set up generation: %w", err)
	}

	results, err := service.Sample(ctx, spec, args, sampleMaxTokens)
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, r := range results {
		cmd.Println(styled(out, titleStyle, fmt.Sprintf("[%d] %s", i+1, args[i])))
		if !r.OK() {
			failed++
			cmd.Printf("  %s %v\n\n", styled(out, errorStyle, "error:"), r.Err)
			continue
		}
		cmd.Printf("%s\n\n", r.Text)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d prompts failed", failed, len(results))
	}
	return nil
}

// parseModelSpec parses "provider/model". The model part may itself contain
// slashes, as Together model ids do.
func parseModelSpec(raw string) (domain.ModelSpec, error) {
	provider, model, ok := strings.Cut(raw, "/")
	if !ok || model == "" {
		return domain.ModelSpec{}, fmt.Errorf("%w: model must be provider/model, got %q", domain.ErrInvalidInput, raw)
	}
	p := domain.Provider(provider)
	if !p.IsValid() {
		return domain.ModelSpec{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, provider)
	}
	return domain.ModelSpec{Provider: p, Model: model}, nil
}
