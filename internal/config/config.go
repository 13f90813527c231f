// Package config assembles the knowledge-base configuration.
//
// Values are layered, later sources winning:
//  1. built-in defaults
//  2. the TOML config store (~/.kbase/config.toml)
//  3. environment variables
//
// Command-line flags are applied by the CLI on top of the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
)

// Config store keys.
const (
	KeySourcePath           = "source_path"
	KeyArtifactPath         = "artifact_path"
	KeySearchK              = "search.k"
	KeyChunkSize            = "chunk.size"
	KeyChunkOverlap         = "chunk.overlap"
	KeyEmbeddingProvider    = "embedding.provider"
	KeyEmbeddingModel       = "embedding.model"
	KeyEmbeddingBaseURL     = "embedding.base_url"
	KeyEmbeddingAPIKey      = "embedding.api_key"
	KeyEmbeddingTimeout     = "embedding.timeout"
	KeyEmbeddingConcurrency = "embedding.concurrency"
	KeyEmbeddingBatchDelay  = "embedding.batch_delay"
	KeyEmbeddingRPS         = "embedding.requests_per_second"
	KeyEmbeddingMaxAttempts = "embedding.max_attempts"
	KeyIndexM               = "index.m"
	KeyIndexEfConstruction  = "index.ef_construction"
	KeyIndexEfSearch        = "index.ef_search"
	KeyLogFormat            = "log.format"
	KeyLogVerbose           = "log.verbose"
)

// Environment variables.
const (
	EnvAPIKey               = "DEEPSEEK_API_KEY"
	EnvKbaseAPIKey          = "KBASE_API_KEY"
	EnvSourcePath           = "KBASE_SOURCE_PATH"
	EnvArtifactPath         = "KBASE_ARTIFACT_PATH"
	EnvEmbeddingProvider    = "KBASE_EMBEDDING_PROVIDER"
	EnvEmbeddingModel       = "KBASE_EMBEDDING_MODEL"
	EnvEmbeddingBaseURL     = "KBASE_EMBEDDING_BASE_URL"
	EnvEmbeddingConcurrency = "KBASE_EMBEDDING_CONCURRENCY"
	EnvEmbeddingBatchDelay  = "KBASE_EMBEDDING_BATCH_DELAY"
	EnvLogFormat            = "KBASE_LOG_FORMAT"
)

// Load builds and validates the configuration. store may be nil.
func Load(store driven.ConfigStore) (domain.KnowledgeBaseConfig, error) {
	cfg := domain.DefaultKnowledgeBaseConfig()
	if store != nil {
		applyStore(&cfg, store)
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyStore copies every key present in store over cfg.
// String values may reference the environment as ${VAR}.
func applyStore(cfg *domain.KnowledgeBaseConfig, store driven.ConfigStore) {
	str := func(key string, dst *string) {
		if v := os.ExpandEnv(store.GetString(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if _, ok := store.Get(key); ok {
			*dst = store.GetInt(key)
		}
	}
	dur := func(key string, dst *time.Duration) {
		if d := store.GetDuration(key); d != 0 {
			*dst = d
		}
	}

	str(KeySourcePath, &cfg.SourcePath)
	str(KeyArtifactPath, &cfg.ArtifactPath)
	num(KeySearchK, &cfg.DefaultK)
	num(KeyChunkSize, &cfg.Chunk.Size)
	num(KeyChunkOverlap, &cfg.Chunk.Overlap)

	var provider string
	str(KeyEmbeddingProvider, &provider)
	if provider != "" {
		setProvider(cfg, domain.AIProvider(provider))
	}
	str(KeyEmbeddingModel, &cfg.Embedding.Model)
	str(KeyEmbeddingBaseURL, &cfg.Embedding.BaseURL)
	str(KeyEmbeddingAPIKey, &cfg.Embedding.APIKey)
	dur(KeyEmbeddingTimeout, &cfg.Embedding.Timeout)
	num(KeyEmbeddingConcurrency, &cfg.Embedding.Concurrency)
	dur(KeyEmbeddingBatchDelay, &cfg.Embedding.BatchDelay)
	if _, ok := store.Get(KeyEmbeddingRPS); ok {
		cfg.Embedding.RequestsPerSecond = store.GetFloat(KeyEmbeddingRPS)
	}
	num(KeyEmbeddingMaxAttempts, &cfg.Embedding.MaxAttempts)

	num(KeyIndexM, &cfg.Index.M)
	num(KeyIndexEfConstruction, &cfg.Index.EfConstruction)
	num(KeyIndexEfSearch, &cfg.Index.EfSearch)

	str(KeyLogFormat, &cfg.Log.Format)
	if store.GetBool(KeyLogVerbose) {
		cfg.Log.Verbose = true
	}
}

// applyEnv overlays environment variables. lookup is os.LookupEnv in production.
func applyEnv(cfg *domain.KnowledgeBaseConfig, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvEmbeddingProvider); ok {
		setProvider(cfg, domain.AIProvider(strings.ToLower(v)))
	}
	if v, ok := get(EnvAPIKey); ok {
		cfg.Embedding.APIKey = v
	}
	if v, ok := get(EnvKbaseAPIKey); ok {
		cfg.Embedding.APIKey = v
	}
	if v, ok := get(EnvEmbeddingModel); ok {
		cfg.Embedding.Model = v
	}
	if v, ok := get(EnvEmbeddingBaseURL); ok {
		cfg.Embedding.BaseURL = v
	}
	if v, ok := get(EnvSourcePath); ok {
		cfg.SourcePath = v
	}
	if v, ok := get(EnvArtifactPath); ok {
		cfg.ArtifactPath = v
	}
	if v, ok := get(EnvLogFormat); ok {
		cfg.Log.Format = v
	}
	if v, ok := get(EnvEmbeddingConcurrency); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, EnvEmbeddingConcurrency, err)
		}
		cfg.Embedding.Concurrency = n
	}
	if v, ok := get(EnvEmbeddingBatchDelay); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, EnvEmbeddingBatchDelay, err)
		}
		cfg.Embedding.BatchDelay = d
	}
	return nil
}

// setProvider switches provider and, when the model and base URL are
// still the previous provider's defaults, moves them to the new one's.
func setProvider(cfg *domain.KnowledgeBaseConfig, p domain.AIProvider) {
	cfg.Embedding.Provider = p
	if p != domain.AIProviderOllama {
		return
	}
	if cfg.Embedding.Model == domain.DefaultEmbeddingModel {
		cfg.Embedding.Model = domain.DefaultOllamaModel
	}
	if cfg.Embedding.BaseURL == domain.DefaultBaseURL {
		cfg.Embedding.BaseURL = domain.DefaultOllamaBaseURL
	}
}
