package driving

import (
	"context"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

// SettingsService reads and edits the persisted configuration.
type SettingsService interface {
	// Get returns the effective settings (file values over defaults).
	Get() domain.Settings

	// Set validates value for a known key and persists it.
	Set(key, value string) error

	// Keys returns every settable key, sorted.
	Keys() []string

	// SetEmbeddingProvider configures the embedding provider, filling in
	// the default model and dimensions when model is empty.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// ValidateEmbeddingConfig pings the configured embedding provider.
	// Returns nil when no provider is configured.
	ValidateEmbeddingConfig(ctx context.Context) error

	// Path returns the configuration file location.
	Path() string
}
