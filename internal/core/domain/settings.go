package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// DetectionSettings holds the thresholds used by retrieval and detection.
type DetectionSettings struct {
	// ShingleSize is used for per-candidate originality and match percent.
	ShingleSize int

	// CitationShingleSize is the smaller window used for citation percent.
	CitationShingleSize int

	// AdmissionThreshold is the minimum score (0-1) for a corpus document
	// to be admitted as a candidate.
	AdmissionThreshold float64

	// OriginalityThreshold marks a document plagiarised when its
	// originality falls below it.
	OriginalityThreshold float64

	// HighSimilarity marks a document plagiarised when any composite
	// similarity (0-1) exceeds it.
	HighSimilarity float64

	// MinTextLength is the minimum number of characters required for analysis.
	MinTextLength int

	// FallbackScanLimit bounds how many corpus documents the text path reads.
	FallbackScanLimit int

	// FallbackTopK caps the candidates returned by the text path.
	FallbackTopK int

	// Concurrency bounds parallel candidate scoring.
	Concurrency int
}

// CacheSettings configures the similarity cache.
type CacheSettings struct {
	// Addr is the Redis address. Empty selects the in-process cache.
	Addr     string
	Password string
	DB       int

	VectorTTL     time.Duration
	SimilarityTTL time.Duration

	// Timeout bounds connect and read operations.
	Timeout time.Duration
}

// QueueSettings configures the task queue.
type QueueSettings struct {
	// Backend is "redis" or "memory". The memory queue only serves
	// workers in the same process (serve --with-worker).
	Backend string

	// Name is the queue key.
	Name string
}

// PipelineSettings configures asynchronous processing.
type PipelineSettings struct {
	Workers           int
	MaxRetries        int
	RetryDelay        time.Duration
	MaxTasksPerWorker int

	// StaleAfter is how long a document may sit in queued before the
	// scheduler resubmits it.
	StaleAfter time.Duration
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the expected vector length.
	Dimensions int

	// RequestsPerSecond limits calls to the provider. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// MinIOSettings configures the object store for extracted text.
type MinIOSettings struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
}

// StorageSettings configures where documents and text live.
type StorageSettings struct {
	// DataDir holds the SQLite database and local text files.
	DataDir string

	// TextBackend is "file" or "minio".
	TextBackend string

	MinIO MinIOSettings
}

// HTTPSettings configures the REST adapter.
type HTTPSettings struct {
	Addr string
}

// Settings holds all application settings.
type Settings struct {
	Detection DetectionSettings
	Cache     CacheSettings
	Queue     QueueSettings
	Pipeline  PipelineSettings
	Embedding EmbeddingSettings
	Storage   StorageSettings
	HTTP      HTTPSettings
	Scheduler SchedulerConfig
}

// DefaultDetectionSettings returns the standard detection thresholds.
func DefaultDetectionSettings() DetectionSettings {
	return DetectionSettings{
		ShingleSize:          3,
		CitationShingleSize:  2,
		AdmissionThreshold:   0.6,
		OriginalityThreshold: 85.0,
		HighSimilarity:       0.8,
		MinTextLength:        100,
		FallbackScanLimit:    50,
		FallbackTopK:         10,
		Concurrency:          4,
	}
}

// DefaultSettings returns settings with sensible defaults.
// Embeddings are left unconfigured; retrieval then uses the text path.
func DefaultSettings() Settings {
	return Settings{
		Detection: DefaultDetectionSettings(),
		Cache: CacheSettings{
			VectorTTL:     time.Hour,
			SimilarityTTL: 2 * time.Hour,
			Timeout:       time.Second,
		},
		Queue: QueueSettings{
			Backend: "redis",
			Name:    "plagiarism",
		},
		Pipeline: PipelineSettings{
			Workers:           2,
			MaxRetries:        3,
			RetryDelay:        60 * time.Second,
			MaxTasksPerWorker: 50,
			StaleAfter:        15 * time.Minute,
		},
		Embedding: EmbeddingSettings{
			Dimensions: 384,
		},
		Storage: StorageSettings{
			TextBackend: "file",
		},
		HTTP: HTTPSettings{
			Addr: ":8080",
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}
