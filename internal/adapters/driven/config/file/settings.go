package file

import (
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
)

// Environment variables that override secrets in the config file.
const (
	EnvRedisPassword  = "PLAGSCAN_REDIS_PASSWORD"
	EnvOpenAIAPIKey   = "PLAGSCAN_OPENAI_API_KEY"
	EnvMinIOSecretKey = "PLAGSCAN_MINIO_SECRET_KEY"
)

// LoadSettings overlays configured keys onto domain.DefaultSettings.
// Keys that are absent keep their defaults. Secrets from the environment
// win over the file.
func LoadSettings(store driven.ConfigStore) domain.Settings {
	s := domain.DefaultSettings()

	det := &s.Detection
	setInt(store, "detection.shingle_size", &det.ShingleSize)
	setInt(store, "detection.citation_shingle_size", &det.CitationShingleSize)
	setFloat(store, "detection.admission_threshold", &det.AdmissionThreshold)
	setFloat(store, "detection.originality_threshold", &det.OriginalityThreshold)
	setFloat(store, "detection.high_similarity", &det.HighSimilarity)
	setInt(store, "detection.min_text_length", &det.MinTextLength)
	setInt(store, "detection.fallback_scan_limit", &det.FallbackScanLimit)
	setInt(store, "detection.fallback_top_k", &det.FallbackTopK)
	setInt(store, "detection.concurrency", &det.Concurrency)

	setString(store, "cache.addr", &s.Cache.Addr)
	setString(store, "cache.password", &s.Cache.Password)
	setInt(store, "cache.db", &s.Cache.DB)
	setDuration(store, "cache.vector_ttl", &s.Cache.VectorTTL)
	setDuration(store, "cache.similarity_ttl", &s.Cache.SimilarityTTL)
	setDuration(store, "cache.timeout", &s.Cache.Timeout)

	setString(store, "queue.backend", &s.Queue.Backend)
	setString(store, "queue.name", &s.Queue.Name)

	setInt(store, "pipeline.workers", &s.Pipeline.Workers)
	setInt(store, "pipeline.max_retries", &s.Pipeline.MaxRetries)
	setDuration(store, "pipeline.retry_delay", &s.Pipeline.RetryDelay)
	setInt(store, "pipeline.max_tasks_per_worker", &s.Pipeline.MaxTasksPerWorker)
	setDuration(store, "pipeline.stale_after", &s.Pipeline.StaleAfter)

	emb := &s.Embedding
	if p := store.GetString("embedding.provider"); p != "" {
		emb.Provider = domain.AIProvider(p)
	}
	setString(store, "embedding.model", &emb.Model)
	setString(store, "embedding.base_url", &emb.BaseURL)
	setString(store, "embedding.api_key", &emb.APIKey)
	setInt(store, "embedding.dimensions", &emb.Dimensions)
	setFloat(store, "embedding.requests_per_second", &emb.RequestsPerSecond)
	if emb.Model == "" && emb.Provider.IsValid() {
		emb.Model = domain.DefaultEmbeddingModels()[emb.Provider]
	}

	setString(store, "storage.data_dir", &s.Storage.DataDir)
	setString(store, "text.backend", &s.Storage.TextBackend)
	mio := &s.Storage.MinIO
	setString(store, "minio.endpoint", &mio.Endpoint)
	setString(store, "minio.access_key", &mio.AccessKey)
	setString(store, "minio.secret_key", &mio.SecretKey)
	setString(store, "minio.bucket", &mio.Bucket)
	setBool(store, "minio.secure", &mio.Secure)

	setString(store, "http.addr", &s.HTTP.Addr)

	s.Scheduler = loadSchedulerConfig(store)

	if v := os.Getenv(EnvRedisPassword); v != "" {
		s.Cache.Password = v
	}
	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		emb.APIKey = v
	}
	if v := os.Getenv(EnvMinIOSecretKey); v != "" {
		mio.SecretKey = v
	}

	if s.Storage.DataDir == "" {
		s.Storage.DataDir = filepath.Join(filepath.Dir(store.Path()), "data")
	}

	return s
}

func loadSchedulerConfig(store driven.ConfigStore) domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()
	setBool(store, "scheduler.enabled", &cfg.Enabled)

	for _, task := range domain.MaintenanceTasks() {
		prefix := "scheduler." + task.ConfigKey + "."
		taskCfg := cfg.TaskConfigs[task.ID]
		setBool(store, prefix+"enabled", &taskCfg.Enabled)
		if d := store.GetDuration(prefix + "interval"); d > 0 {
			taskCfg.Interval = d
		}
		cfg.TaskConfigs[task.ID] = taskCfg
	}
	return cfg
}

func setString(store driven.ConfigStore, key string, dst *string) {
	if v := store.GetString(key); v != "" {
		*dst = v
	}
}

func setInt(store driven.ConfigStore, key string, dst *int) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetInt(key)
	}
}

func setFloat(store driven.ConfigStore, key string, dst *float64) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetFloat(key)
	}
}

func setBool(store driven.ConfigStore, key string, dst *bool) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetBool(key)
	}
}

func setDuration(store driven.ConfigStore, key string, dst *time.Duration) {
	if d := store.GetDuration(key); d > 0 {
		*dst = d
	}
}
