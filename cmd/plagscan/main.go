// Command plagscan is the plagiarism detection CLI, worker and API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/plagscan/internal/adapters/driven/ai"
	memcache "github.com/custodia-labs/plagscan/internal/adapters/driven/cache/memory"
	rediscache "github.com/custodia-labs/plagscan/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/plagscan/internal/adapters/driven/config/file"
	memqueue "github.com/custodia-labs/plagscan/internal/adapters/driven/queue/memory"
	redisqueue "github.com/custodia-labs/plagscan/internal/adapters/driven/queue/redis"
	"github.com/custodia-labs/plagscan/internal/adapters/driven/storage/sqlite"
	filetext "github.com/custodia-labs/plagscan/internal/adapters/driven/textstore/file"
	miniotext "github.com/custodia-labs/plagscan/internal/adapters/driven/textstore/minio"
	"github.com/custodia-labs/plagscan/internal/adapters/driving/cli"
	"github.com/custodia-labs/plagscan/internal/connectors/filesystem"
	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/core/services"
	"github.com/custodia-labs/plagscan/internal/extractors"
	"github.com/custodia-labs/plagscan/internal/logger"
	"github.com/custodia-labs/plagscan/internal/vectorizer"
)

// version is set at build time via -ldflags.
var version = "dev"

// memQueueCapacity bounds the in-process queue.
const memQueueCapacity = 1024

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	configDir, err := file.DefaultDir()
	if err != nil {
		return report(err)
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return report(fmt.Errorf("opening config: %w", err))
	}
	settings := file.LoadSettings(configStore)
	if lvl := os.Getenv("PLAGSCAN_LOG_LEVEL"); lvl != "" {
		logger.SetLevel(lvl)
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return report(fmt.Errorf("opening document store: %w", err))
	}
	defer store.Close()

	textStore, err := newTextStore(ctx, settings.Storage)
	if err != nil {
		return report(fmt.Errorf("opening text store: %w", err))
	}

	cache, closeCache := newCache(ctx, settings.Cache)
	defer closeCache()

	queue, closeQueue := newQueue(ctx, settings)
	defer closeQueue()

	var vec driven.Vectorizer
	if settings.Embedding.IsConfigured() {
		embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
		if err != nil {
			logger.Warn("embedding unavailable, using text comparison only: %v", err)
		} else {
			vec = vectorizer.New(embedder)
		}
	}

	docStore := store.DocumentStore()
	detector := services.NewDetectorService(docStore, textStore, cache, settings.Detection, settings.Cache)
	registry := extractors.Default()
	pipeline := services.NewPipelineService(docStore, textStore, registry, vec, cache, detector, settings.Cache)
	processing := services.NewProcessingService(docStore, queue, pipeline)
	documents := services.NewDocumentService(docStore, textStore)
	newSource := func(dir string) driven.FileSource {
		return filesystem.New(dir, registry.SupportedExtensions())
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Documents:  documents,
		Processing: processing,
		Detector:   detector,
		Reports:    services.NewReportService(docStore, detector),
		Imports:    services.NewImportService(documents, processing, newSource),
		Settings:   services.NewSettingsService(configStore, ai.NewConfigValidator(), file.LoadSettings),
		Workers:    services.NewWorkerPool(queue, pipeline, settings.Pipeline),
		Scheduler: services.NewScheduler(
			settings.Scheduler, store.SchedulerStore(), docStore, processing, settings.Pipeline.StaleAfter,
		),
	})

	return cli.Execute(ctx)
}

// report prints a startup error; command errors are printed by cobra.
func report(err error) error {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return err
}

func newTextStore(ctx context.Context, s domain.StorageSettings) (driven.TextStore, error) {
	if s.TextBackend == "minio" {
		return miniotext.NewStore(ctx, miniotext.Config{
			Endpoint:  s.MinIO.Endpoint,
			AccessKey: s.MinIO.AccessKey,
			SecretKey: s.MinIO.SecretKey,
			Bucket:    s.MinIO.Bucket,
			Secure:    s.MinIO.Secure,
		})
	}
	return filetext.NewStore(filepath.Join(s.DataDir, "txt_files"))
}

// newCache selects Redis when an address is configured. An unreachable
// Redis yields a cache that always misses.
func newCache(ctx context.Context, s domain.CacheSettings) (driven.SimilarityCache, func()) {
	if s.Addr == "" {
		return memcache.New(), func() {}
	}
	c := rediscache.New(ctx, rediscache.Config{
		Addr:     s.Addr,
		Password: s.Password,
		DB:       s.DB,
		Timeout:  s.Timeout,
	})
	return c, func() { c.Close() } //nolint:errcheck
}

// newQueue returns nil when the broker cannot be reached; submissions
// then run the pipeline inline. The memory queue accepts tasks only while
// this process runs the worker pool (serve --with-worker, worker), so
// every other command processes inline too.
func newQueue(ctx context.Context, s domain.Settings) (driven.TaskQueue, func()) {
	switch s.Queue.Backend {
	case "memory":
		q := memqueue.New(memQueueCapacity)
		return q, func() { q.Close() } //nolint:errcheck
	case "redis":
		q, err := redisqueue.New(ctx, redisqueue.Config{
			Addr:     s.Cache.Addr,
			Password: s.Cache.Password,
			DB:       s.Cache.DB,
			Name:     s.Queue.Name,
			Timeout:  s.Cache.Timeout,
		})
		if err != nil {
			logger.Warn("task queue unavailable, processing inline: %v", err)
			return nil, func() {}
		}
		return q, func() { q.Close() } //nolint:errcheck
	default:
		logger.Warn("unknown queue backend %q, processing inline", s.Queue.Backend)
		return nil, func() {}
	}
}
