package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change application settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a setting",
	Long: `Stores a single setting under its dot-notation key, for example:

  llmprint settings set providers.openai.workers 4
  llmprint settings set generation.failure_policy skip
  llmprint settings set features.command "stylometrix --in {input} --out {output}"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Println(styled(out, titleStyle, "Current Settings"))
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Max tokens: %d\n", settings.Generation.MaxTokens)
	cmd.Printf("  Temperature: %.2f\n", settings.Generation.Temperature)
	cmd.Printf("  Timeout: %s\n", settings.Generation.Timeout)
	cmd.Printf("  Failure policy: %s\n", settings.Generation.FailurePolicy)
	cmd.Println()

	cmd.Println("[Corpus]")
	cmd.Printf("  Sink: %s\n", settings.Corpus.Sink)
	if settings.Corpus.Sink == domain.SinkS3 {
		cmd.Printf("  Bucket: %s\n", settings.Corpus.S3Bucket)
		cmd.Printf("  Region: %s\n", settings.Corpus.S3Region)
		cmd.Printf("  Prefix: %s\n", settings.Corpus.S3Prefix)
		if settings.Corpus.S3Endpoint != "" {
			cmd.Printf("  Endpoint: %s\n", settings.Corpus.S3Endpoint)
		}
		if settings.Corpus.S3AccessKey != "" {
			cmd.Printf("  Access key: %s\n", maskAPIKey(settings.Corpus.S3AccessKey))
		}
	} else {
		cmd.Printf("  Directory: %s\n", settings.Corpus.Dir)
	}
	cmd.Printf("  Metadata: %s\n", settings.Corpus.MetadataPath)
	cmd.Println()

	cmd.Println("[Features]")
	if settings.Features.Command != "" {
		cmd.Printf("  Command: %s\n", settings.Features.Command)
	} else {
		cmd.Printf("  Command: (not set)\n")
	}
	cmd.Printf("  Output: %s\n", settings.Features.OutputPath)
	cmd.Println()

	cmd.Println("[Providers]")
	for _, p := range domain.Providers() {
		ps := settings.Provider(p)
		status := styled(out, successStyle, "configured")
		if !ps.IsConfigured() {
			status = styled(out, mutedStyle, "not configured")
		}
		cmd.Printf("  %s: %s\n", p.Description(), status)
		if ps.APIKey != "" {
			cmd.Printf("    API Key: %s\n", maskAPIKey(ps.APIKey))
		} else {
			cmd.Printf("    API Key: (not set, %s)\n", p.EnvKey())
		}
		if ps.BaseURL != "" {
			cmd.Printf("    Base URL: %s\n", ps.BaseURL)
		}
		cmd.Printf("    Workers: %d, %.1f req/s, burst %d, %d attempts\n",
			ps.Workers, ps.RequestsPerSecond, ps.Burst, ps.MaxAttempts)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	if err := settingsService.Set(key, parseSettingValue(args[1])); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	// Read back so that an unusable value is reported now rather than at the next run.
	if _, err := settingsService.Get(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.ConfigPath())
	return nil
}

// parseSettingValue stores numbers and booleans with their TOML type.
func parseSettingValue(raw string) any {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
