package domain

import (
	"fmt"
	"strings"
	"time"
)

// AIProvider represents an embedding provider.
type AIProvider string

const (
	// AIProviderOpenAI is any OpenAI-compatible embeddings API (DeepSeek, OpenAI).
	AIProviderOpenAI AIProvider = "openai"
	// AIProviderOllama is a local Ollama server.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the provider is known.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if the provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// Default settings values.
const (
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultConcurrency    = 10
	DefaultBatchDelay     = 100 * time.Millisecond
	DefaultArtifactPath   = "data/vectorstore"
	DefaultSourcePath     = "data/real-estate-knowledge.md"
	DefaultEmbeddingModel = "deepseek-embed"
	DefaultBaseURL        = "https://api.deepseek.com/v1"
	DefaultOllamaBaseURL  = "http://localhost:11434"
	DefaultOllamaModel    = "nomic-embed-text"
)

// ChunkSettings configures the recursive chunker.
type ChunkSettings struct {
	Size    int
	Overlap int
}

// EmbeddingSettings configures the embedding provider and batching.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration

	// Concurrency is the number of chunks embedded per batch.
	Concurrency int
	// BatchDelay is the pause between batches.
	BatchDelay time.Duration
	// RequestsPerSecond enables an additional token-bucket limiter when > 0.
	RequestsPerSecond float64
	// MaxAttempts enables retries when > 1.
	MaxAttempts int
}

// IsConfigured returns true if the provider has what it needs to run.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Model == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings configures the ANN index.
type IndexSettings struct {
	M              int
	EfConstruction int
	EfSearch       int
}

// LogSettings configures the logger.
type LogSettings struct {
	// Format is "console" or "json".
	Format  string
	Verbose bool
}

// KnowledgeBaseConfig is the explicit configuration of the pipeline.
// Services never read the environment; everything arrives through this struct.
type KnowledgeBaseConfig struct {
	SourcePath   string
	ArtifactPath string
	DefaultK     int

	Chunk     ChunkSettings
	Embedding EmbeddingSettings
	Index     IndexSettings
	Log       LogSettings
}

// DefaultKnowledgeBaseConfig returns the built-in defaults.
func DefaultKnowledgeBaseConfig() KnowledgeBaseConfig {
	return KnowledgeBaseConfig{
		SourcePath:   DefaultSourcePath,
		ArtifactPath: DefaultArtifactPath,
		DefaultK:     DefaultK,
		Chunk: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultEmbeddingModel,
			BaseURL:     DefaultBaseURL,
			Timeout:     30 * time.Second,
			Concurrency: DefaultConcurrency,
			BatchDelay:  DefaultBatchDelay,
			MaxAttempts: 1,
		},
		Index: IndexSettings{
			M:              16,
			EfConstruction: 200,
			EfSearch:       64,
		},
		Log: LogSettings{
			Format: "console",
		},
	}
}

// Validate checks the configuration and reports every problem found.
func (c KnowledgeBaseConfig) Validate() error {
	var problems []string
	if c.Chunk.Size <= 0 {
		problems = append(problems, fmt.Sprintf("chunk size must be positive, got %d", c.Chunk.Size))
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size {
		problems = append(problems, fmt.Sprintf("chunk overlap must be in [0,%d), got %d", c.Chunk.Size, c.Chunk.Overlap))
	}
	if c.Embedding.Concurrency <= 0 {
		problems = append(problems, "embedding concurrency must be positive")
	}
	if c.Embedding.BatchDelay < 0 {
		problems = append(problems, "embedding batch delay must not be negative")
	}
	if !c.Embedding.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown embedding provider %q", c.Embedding.Provider))
	}
	if c.ArtifactPath == "" {
		problems = append(problems, "artifact path is required")
	}
	if c.DefaultK <= 0 {
		problems = append(problems, "default k must be positive")
	}
	if c.Index.M < 2 || c.Index.EfConstruction <= 0 || c.Index.EfSearch <= 0 {
		problems = append(problems, "index parameters must be positive (m >= 2)")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
