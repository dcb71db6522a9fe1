package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	extractCorpusDir string
	extractOutPath   string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the feature extractor over a corpus",
	Long: `Hands the corpus directory to the external stylometric feature
extractor configured in features.command. The command receives the corpus
directory as {input} and the feature table path as {output}.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractCorpusDir, "corpus", "", "corpus directory (defaults to corpus.dir)")
	extractCmd.Flags().StringVarP(&extractOutPath, "out", "o", "", "feature table path (defaults to features.output)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	corpusDir, outPath := extractCorpusDir, extractOutPath
	if corpusDir == "" || outPath == "" {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		if corpusDir == "" {
			corpusDir = settings.Corpus.Dir
		}
		if outPath == "" {
			outPath = settings.Features.OutputPath
		}
	}

	cmd.Printf("Extracting features from %s...\n", corpusDir)

	ids, err := extractionService.Extract(commandContext(cmd), corpusDir, outPath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	cmd.Printf("Extracted features for %d documents to %s\n", len(ids), outPath)
	return nil
}
