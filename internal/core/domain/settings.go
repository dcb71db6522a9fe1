package domain

import "time"

const unknownDescription = "Unknown"

// Provider identifies a text-generation backend.
type Provider string

// Available providers.
const (
	// ProviderOpenAI is the OpenAI chat completions API.
	ProviderOpenAI Provider = "openai"

	// ProviderAnthropic is the Anthropic messages API.
	ProviderAnthropic Provider = "anthropic"

	// ProviderTogether is Together AI's OpenAI-compatible API.
	ProviderTogether Provider = "together"

	// ProviderMistral is Mistral's chat completions API.
	ProviderMistral Provider = "mistral"

	// ProviderGemini is Google's Gemini API.
	ProviderGemini Provider = "gemini"
)

// Providers returns all supported providers.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic, ProviderTogether, ProviderMistral, ProviderGemini}
}

// IsValid returns true if the provider is recognised.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderTogether, ProviderMistral, ProviderGemini:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Provider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p Provider) Description() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderTogether:
		return "Together AI"
	case ProviderMistral:
		return "Mistral AI"
	case ProviderGemini:
		return "Google Gemini"
	default:
		return unknownDescription
	}
}

// EnvKey returns the environment variable holding the provider's API key.
func (p Provider) EnvKey() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderTogether:
		return "TOGETHER_API_KEY"
	case ProviderMistral:
		return "MISTRAL_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// ProviderSettings holds credentials and throughput limits for one provider.
type ProviderSettings struct {
	// APIKey is the bearer credential.
	APIKey string

	// BaseURL overrides the provider endpoint (empty uses the default).
	BaseURL string

	// Workers is the number of concurrent requests allowed.
	Workers int

	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int

	// MaxAttempts bounds retries after rate limiting (1 = no retry).
	MaxAttempts int
}

// IsConfigured returns true if a credential is present.
func (s ProviderSettings) IsConfigured() bool {
	return s.APIKey != ""
}

// GenerationSettings holds defaults for generation calls.
type GenerationSettings struct {
	// MaxTokens is the default completion cap.
	MaxTokens int

	// Temperature is the default sampling temperature.
	Temperature float64

	// Timeout bounds each provider request.
	Timeout time.Duration

	// FailurePolicy decides what happens to failed documents.
	FailurePolicy FailurePolicy
}

// SinkType identifies where the corpus is written.
type SinkType string

// Available corpus sinks.
const (
	SinkLocal SinkType = "local"
	SinkS3    SinkType = "s3"
)

// CorpusSettings holds corpus locations.
type CorpusSettings struct {
	// Dir is the local corpus directory.
	Dir string

	// MetadataPath is the metadata table path.
	MetadataPath string

	// Sink selects the storage backend.
	Sink SinkType

	// S3Bucket, S3Region and S3Prefix configure the s3 sink.
	S3Bucket string
	S3Region string
	S3Prefix string

	// S3Endpoint points the s3 sink at an S3-compatible service.
	S3Endpoint string

	// S3AccessKey and S3SecretKey are static credentials. When empty the
	// default AWS credential chain is used.
	S3AccessKey string
	S3SecretKey string
}

// FeatureSettings configures the external feature extractor.
type FeatureSettings struct {
	// Command is the extractor command line with {input} and {output} placeholders.
	Command string

	// OutputPath is the default feature table location.
	OutputPath string
}

// Settings is the full application configuration.
type Settings struct {
	Generation GenerationSettings
	Corpus     CorpusSettings
	Features   FeatureSettings
	Providers  map[Provider]ProviderSettings
}

// Provider returns settings for p, falling back to defaults for unset limits.
func (s *Settings) Provider(p Provider) ProviderSettings {
	ps := s.Providers[p]
	if ps.Workers <= 0 {
		ps.Workers = 1
	}
	if ps.RequestsPerSecond <= 0 {
		ps.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if ps.Burst <= 0 {
		ps.Burst = 1
	}
	if ps.MaxAttempts <= 0 {
		ps.MaxAttempts = DefaultMaxAttempts
	}
	return ps
}

// Default values.
const (
	DefaultMaxTokens         = 200
	DefaultTemperature       = 0.7
	DefaultTimeout           = 60 * time.Second
	DefaultRequestsPerSecond = 2.0
	DefaultMaxAttempts       = 3
	DefaultCorpusDir         = "data/corpus"
	DefaultMetadataPath      = "data/metadata.csv"
	DefaultFeaturesPath      = "data/features.csv"
)

// DefaultSettings returns settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Generation: GenerationSettings{
			MaxTokens:     DefaultMaxTokens,
			Temperature:   DefaultTemperature,
			Timeout:       DefaultTimeout,
			FailurePolicy: FailurePolicyEmpty,
		},
		Corpus: CorpusSettings{
			Dir:          DefaultCorpusDir,
			MetadataPath: DefaultMetadataPath,
			Sink:         SinkLocal,
		},
		Features: FeatureSettings{
			OutputPath: DefaultFeaturesPath,
		},
		Providers: make(map[Provider]ProviderSettings),
	}
}
