package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestParseSettingValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{name: "Integer", input: "4", expected: 4},
		{name: "Float", input: "0.5", expected: 0.5},
		{name: "True", input: "true", expected: true},
		{name: "False", input: "false", expected: false},
		{name: "Duration stays text", input: "90s", expected: "90s"},
		{name: "Text", input: "skip", expected: "skip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseSettingValue(tt.input))
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	settings := newMockSettingsService()
	settings.settings.Providers[domain.ProviderOpenAI] = domain.ProviderSettings{APIKey: "sk-1234567890abcdef", Workers: 4}
	settings.settings.Features.Command = "stylometrix {input} {output}"
	cleanup := setupServices(Services{Settings: settings})
	defer cleanup()

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "Failure policy: empty")
	assert.Contains(t, out, "Directory: "+domain.DefaultCorpusDir)
	assert.Contains(t, out, "Command: stylometrix {input} {output}")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "Workers: 4")
	assert.Contains(t, out, "(not set, ANTHROPIC_API_KEY)")
}

func TestSettingsShowCmd_S3(t *testing.T) {
	settings := newMockSettingsService()
	settings.settings.Corpus.Sink = domain.SinkS3
	settings.settings.Corpus.S3Bucket = "corpora"
	settings.settings.Corpus.S3SecretKey = "very-secret-value"
	cleanup := setupServices(Services{Settings: settings})
	defer cleanup()

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Bucket: corpora")
	assert.NotContains(t, out, "very-secret-value")
}

func TestSettingsSetCmd(t *testing.T) {
	settings := newMockSettingsService()
	cleanup := setupServices(Services{Settings: settings})
	defer cleanup()

	out, err := executeCommand("settings", "set", "providers.openai.workers", "4")

	require.NoError(t, err)
	assert.Equal(t, 4, settings.set["providers.openai.workers"])
	assert.Contains(t, out, "Set providers.openai.workers")
}

func TestSettingsSetCmd_Error(t *testing.T) {
	settings := newMockSettingsService()
	settings.setErr = errors.New("read-only")
	cleanup := setupServices(Services{Settings: settings})
	defer cleanup()

	_, err := executeCommand("settings", "set", "generation.max_tokens", "100")

	assert.ErrorContains(t, err, "read-only")
}

func TestSettingsPathCmd(t *testing.T) {
	cleanup := setupServices(Services{Settings: newMockSettingsService()})
	defer cleanup()

	out, err := executeCommand("settings", "path")

	require.NoError(t, err)
	assert.Contains(t, out, "/home/test/.llmprint/config.toml")
}

func TestSettingsShowCmd_NotConfigured(t *testing.T) {
	cleanup := setupServices(Services{})
	defer cleanup()

	_, err := executeCommand("settings", "show")

	assert.EqualError(t, err, "settings service not configured")
}
