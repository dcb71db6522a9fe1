package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyMaxTokens     = "generation.max_tokens"
	keyTemperature   = "generation.temperature"
	keyTimeout       = "generation.timeout"
	keyFailurePolicy = "generation.failure_policy"
	keyCorpusDir     = "corpus.dir"
	keyMetadata      = "corpus.metadata"
	keySink          = "corpus.sink"
	keyS3Bucket      = "corpus.s3_bucket"
	keyS3Region      = "corpus.s3_region"
	keyS3Prefix      = "corpus.s3_prefix"
	keyS3Endpoint    = "corpus.s3_endpoint"
	keyS3AccessKey   = "corpus.s3_access_key"
	keyS3SecretKey   = "corpus.s3_secret_key"
	keyFeatureCmd    = "features.command"
	keyFeatureOutput = "features.output"

	providerKeyPrefix = "providers."
	keyAPIKey         = "api_key"
	keyBaseURL        = "base_url"
	keyWorkers        = "workers"
	keyRPS            = "requests_per_second"
	keyBurst          = "burst"
	keyMaxAttempts    = "max_attempts"
)

// SettingsService builds effective settings from the config store and the
// environment. Provider API keys in the environment win over stored keys.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return NewSettingsServiceWithEnv(configStore, os.Getenv)
}

// NewSettingsServiceWithEnv creates a settings service with a custom environment lookup.
func NewSettingsServiceWithEnv(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &SettingsService{configStore: configStore, getenv: getenv}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	timeout, err := s.getDuration(keyTimeout, defaults.Generation.Timeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.Settings{
		Generation: domain.GenerationSettings{
			MaxTokens:     s.getInt(keyMaxTokens, defaults.Generation.MaxTokens),
			Temperature:   s.getFloat(keyTemperature, defaults.Generation.Temperature),
			Timeout:       timeout,
			FailurePolicy: s.getFailurePolicy(defaults.Generation.FailurePolicy),
		},
		Corpus: domain.CorpusSettings{
			Dir:          s.getString(keyCorpusDir, defaults.Corpus.Dir),
			MetadataPath: s.getString(keyMetadata, defaults.Corpus.MetadataPath),
			Sink:         s.getSink(defaults.Corpus.Sink),
			S3Bucket:     s.configStore.GetString(keyS3Bucket),
			S3Region:     s.configStore.GetString(keyS3Region),
			S3Prefix:     s.configStore.GetString(keyS3Prefix),
			S3Endpoint:   s.configStore.GetString(keyS3Endpoint),
			S3AccessKey:  s.configStore.GetString(keyS3AccessKey),
			S3SecretKey:  s.configStore.GetString(keyS3SecretKey),
		},
		Features: domain.FeatureSettings{
			Command:    s.configStore.GetString(keyFeatureCmd),
			OutputPath: s.getString(keyFeatureOutput, defaults.Features.OutputPath),
		},
		Providers: make(map[domain.Provider]domain.ProviderSettings),
	}

	for _, p := range domain.Providers() {
		ps := domain.ProviderSettings{
			APIKey:            s.configStore.GetString(providerKey(p, keyAPIKey)),
			BaseURL:           s.configStore.GetString(providerKey(p, keyBaseURL)),
			Workers:           s.configStore.GetInt(providerKey(p, keyWorkers)),
			RequestsPerSecond: s.configStore.GetFloat(providerKey(p, keyRPS)),
			Burst:             s.configStore.GetInt(providerKey(p, keyBurst)),
			MaxAttempts:       s.configStore.GetInt(providerKey(p, keyMaxAttempts)),
		}
		if key := strings.TrimSpace(s.getenv(p.EnvKey())); key != "" {
			ps.APIKey = key
		}
		settings.Providers[p] = ps
	}

	return settings, nil
}

// Set stores a single dot-notation key.
func (s *SettingsService) Set(key string, value any) error {
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// ConfigPath returns the settings file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func providerKey(p domain.Provider, field string) string {
	return providerKeyPrefix + p.String() + "." + field
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getDuration accepts a Go duration string ("90s") or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal, nil
	}
	if str, isStr := val.(string); isStr {
		d, err := time.ParseDuration(str)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		return d, nil
	}
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second, nil
	}
	return defaultVal, nil
}

func (s *SettingsService) getFailurePolicy(defaultVal domain.FailurePolicy) domain.FailurePolicy {
	policy := domain.FailurePolicy(s.configStore.GetString(keyFailurePolicy))
	if policy.IsValid() {
		return policy
	}
	return defaultVal
}

func (s *SettingsService) getSink(defaultVal domain.SinkType) domain.SinkType {
	switch sink := domain.SinkType(s.configStore.GetString(keySink)); sink {
	case domain.SinkLocal, domain.SinkS3:
		return sink
	default:
		return defaultVal
	}
}
