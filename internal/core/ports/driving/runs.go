package driving

import (
	"context"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// RunService exposes the generation ledger.
type RunService interface {
	// List returns recent runs, most recent first.
	List(ctx context.Context, limit int) ([]domain.Run, error)

	// Get returns a run and its document records.
	Get(ctx context.Context, id string) (*domain.Run, []domain.DocumentRecord, error)
}

// SettingsService reads and writes application settings.
type SettingsService interface {
	// Get returns the effective settings (config file + environment).
	Get() (*domain.Settings, error)

	// Set stores a single dot-notation key.
	Set(key string, value any) error

	// ConfigPath returns the settings file location.
	ConfigPath() string
}
