package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect past generation runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generation runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a run and its document attempts",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs")
	runsListCmd.Flags().BoolVar(&runsJSON, "json", false, "output runs as JSON")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}

	runs, err := runService.List(commandContext(cmd), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if runsJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal runs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	cmd.Printf("%-36s  %-9s  %-19s  %7s  %6s\n", "ID", "STATUS", "STARTED", "SAVED", "FAILED")
	for i := range runs {
		cmd.Printf("%-36s  %-9s  %-19s  %3d/%-3d  %6d\n",
			runs[i].ID, runs[i].Status, formatTime(runs[i].StartedAt),
			runs[i].Saved, runs[i].Planned, runs[i].Failed)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}

	run, records, err := runService.Get(commandContext(cmd), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run %s not found", args[0])
		}
		return fmt.Errorf("failed to get run: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Println(styled(out, titleStyle, "Run "+run.ID))
	cmd.Printf("  Status:   %s\n", run.Status)
	cmd.Printf("  Started:  %s\n", formatTime(run.StartedAt))
	if !run.FinishedAt.IsZero() {
		cmd.Printf("  Finished: %s (%s)\n", formatTime(run.FinishedAt),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	cmd.Printf("  Saved:    %d of %d\n", run.Saved, run.Planned)
	cmd.Printf("  Failed:   %d\n", run.Failed)
	if run.CorpusLocation != "" {
		cmd.Printf("  Corpus:   %s\n", run.CorpusLocation)
	}
	if run.MetadataPath != "" {
		cmd.Printf("  Metadata: %s\n", run.MetadataPath)
	}
	if run.Error != "" {
		cmd.Printf("  Error:    %s\n", styled(out, errorStyle, run.Error))
	}

	if len(records) == 0 {
		return nil
	}
	cmd.Println()
	for i := range records {
		r := records[i]
		status := styled(out, successStyle, "ok")
		if !r.OK {
			status = styled(out, errorStyle, "failed")
		}
		cmd.Printf("  [%d] %s/%s %s: %s (%d chars, %d attempts, %s)\n",
			r.Index, r.Provider, r.Model, r.Genre, status, r.Chars, r.Attempts, r.Duration.Round(time.Millisecond))
		if r.DocID != "" {
			cmd.Printf("      %s\n", styled(out, mutedStyle, r.DocID))
		}
		if r.Error != "" {
			cmd.Printf("      %s\n", r.Error)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
