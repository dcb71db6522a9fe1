package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	mergeMetadataPath string
	mergeFeaturesPath string
	mergeOutPath      string
	mergeWait         time.Duration
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Join corpus metadata with a feature table",
	Long: `Inner-joins the corpus metadata table with a stylometric feature table
on doc_id. Identifiers are compared after trimming whitespace and the .txt
extension; rows without a counterpart are dropped.

With --wait the command first waits for the feature table to appear, for
use while an external extractor is still writing it.`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeMetadataPath, "metadata", "", "metadata table (defaults to corpus.metadata)")
	mergeCmd.Flags().StringVar(&mergeFeaturesPath, "features", "", "feature table (defaults to features.output)")
	mergeCmd.Flags().StringVarP(&mergeOutPath, "out", "o", "", "write the merged table to this path")
	mergeCmd.Flags().DurationVar(&mergeWait, "wait", 0, "wait up to this long for the feature table")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, _ []string) error {
	if mergeService == nil {
		return errors.New("merge service not configured")
	}

	metadataPath, featuresPath := mergeMetadataPath, mergeFeaturesPath
	if metadataPath == "" || featuresPath == "" {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		if metadataPath == "" {
			metadataPath = settings.Corpus.MetadataPath
		}
		if featuresPath == "" {
			featuresPath = settings.Features.OutputPath
		}
	}

	ctx := commandContext(cmd)

	if mergeWait > 0 {
		if waitForFile == nil {
			return errors.New("file watcher not configured")
		}
		cmd.Printf("Waiting up to %s for %s...\n", mergeWait, featuresPath)
		if err := waitForFile(ctx, featuresPath, mergeWait); err != nil {
			return fmt.Errorf("feature table not ready: %w", err)
		}
	}

	merged, err := mergeService.Merge(ctx, metadataPath, featuresPath)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Printf("Merged %d documents with %d columns\n", merged.Len(), len(merged.Columns))
	cmd.Printf("  Columns: %s\n", styled(out, mutedStyle, strings.Join(merged.Columns, ", ")))

	if mergeOutPath == "" {
		return nil
	}
	if err := mergeService.Export(merged, mergeOutPath); err != nil {
		return fmt.Errorf("failed to write merged table: %w", err)
	}
	cmd.Printf("Wrote merged table to %s\n", mergeOutPath)
	return nil
}
