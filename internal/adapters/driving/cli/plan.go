package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Work with generation plans",
}

var planValidateCmd = &cobra.Command{
	Use:   "validate [plan-file]",
	Short: "Check a plan and list the jobs it expands to",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanValidate,
}

func init() {
	planCmd.AddCommand(planValidateCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlanValidate(cmd *cobra.Command, args []string) error {
	if planService == nil {
		return errors.New("plan service not configured")
	}

	plan, err := planService.Load(args[0])
	if err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	prompts := 0
	for _, g := range plan.Genres {
		prompts += len(g.Prompts)
	}
	repeats := plan.Repeats
	if repeats <= 0 {
		repeats = 1
	}

	out := cmd.OutOrStdout()
	cmd.Println(styled(out, successStyle, "Plan is valid."))
	cmd.Printf("  Models:  %d\n", len(plan.Models))
	for _, m := range plan.Models {
		cmd.Printf("    - %s\n", m)
	}
	cmd.Printf("  Genres:  %d (%d prompts)\n", len(plan.Genres), prompts)
	cmd.Printf("  Repeats: %d\n", repeats)
	cmd.Printf("  Jobs:    %d\n", len(plan.Jobs()))
	return nil
}
