package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys written by the settings service.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"
)

const defaultOllamaURL = "http://localhost:11434"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

// settableKeys lists every key Set accepts and how its value is parsed.
var settableKeys = map[string]valueKind{
	"detection.shingle_size":           kindInt,
	"detection.citation_shingle_size":  kindInt,
	"detection.admission_threshold":    kindFloat,
	"detection.originality_threshold":  kindFloat,
	"detection.high_similarity":        kindFloat,
	"detection.min_text_length":        kindInt,
	"detection.fallback_scan_limit":    kindInt,
	"detection.fallback_top_k":         kindInt,
	"detection.concurrency":            kindInt,
	"cache.addr":                       kindString,
	"cache.password":                   kindString,
	"cache.db":                         kindInt,
	"cache.vector_ttl":                 kindDuration,
	"cache.similarity_ttl":             kindDuration,
	"cache.timeout":                    kindDuration,
	"queue.backend":                    kindString,
	"queue.name":                       kindString,
	"pipeline.workers":                 kindInt,
	"pipeline.max_retries":             kindInt,
	"pipeline.retry_delay":             kindDuration,
	"pipeline.max_tasks_per_worker":    kindInt,
	"pipeline.stale_after":             kindDuration,
	keyEmbedProvider:                   kindString,
	keyEmbedModel:                      kindString,
	keyEmbedBaseURL:                    kindString,
	keyEmbedAPIKey:                     kindString,
	keyEmbedDimensions:                 kindInt,
	"embedding.requests_per_second":    kindFloat,
	"storage.data_dir":                 kindString,
	"text.backend":                     kindString,
	"minio.endpoint":                   kindString,
	"minio.access_key":                 kindString,
	"minio.secret_key":                 kindString,
	"minio.bucket":                     kindString,
	"minio.secure":                     kindBool,
	"http.addr":                        kindString,
	"scheduler.enabled":                kindBool,
	"scheduler.requeue_stale.enabled":  kindBool,
	"scheduler.requeue_stale.interval": kindDuration,
}

// SettingsLoader turns raw configuration into effective settings.
type SettingsLoader func(store driven.ConfigStore) domain.Settings

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	load        SettingsLoader
}

// NewSettingsService creates a new settings service.
// The validator is optional (can be nil).
func NewSettingsService(
	configStore driven.ConfigStore,
	aiValidator driven.AIConfigValidator,
	load SettingsLoader,
) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		load:        load,
	}
}

// Get returns the effective settings.
func (s *SettingsService) Get() domain.Settings {
	if s.configStore == nil || s.load == nil {
		return domain.DefaultSettings()
	}
	return s.load(s.configStore)
}

// Keys returns every settable key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if key == keyEmbedProvider && value != "" && !domain.AIProvider(value).IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, value)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return err
	}
	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	baseURL := ""
	if provider == domain.AIProviderOllama {
		baseURL = s.configStore.GetString(keyEmbedBaseURL)
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
	}

	values := map[string]any{
		keyEmbedProvider: string(provider),
		keyEmbedModel:    model,
		keyEmbedBaseURL:  baseURL,
		keyEmbedAPIKey:   apiKey,
	}
	if d, ok := domain.EmbeddingDimensions()[model]; ok {
		values[keyEmbedDimensions] = int64(d)
	}
	for k, v := range values {
		if err := s.configStore.Set(k, v); err != nil {
			return err
		}
	}
	return s.configStore.Save()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings := s.Get()
	return s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding)
}

// Path returns the configuration file location.
func (s *SettingsService) Path() string {
	if s.configStore == nil {
		return ""
	}
	return s.configStore.Path()
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.ParseInt(value, 10, 64)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, err
		}
		return value, nil
	default:
		return value, nil
	}
}
