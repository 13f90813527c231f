package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbase/internal/config"
	"github.com/custodia-labs/kbase/internal/core/domain"
)

func clearKbaseEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvAPIKey, config.EnvKbaseAPIKey, config.EnvSourcePath, config.EnvArtifactPath,
		config.EnvEmbeddingProvider, config.EnvEmbeddingModel, config.EnvEmbeddingBaseURL,
		config.EnvEmbeddingConcurrency, config.EnvEmbeddingBatchDelay, config.EnvLogFormat,
	} {
		t.Setenv(name, "")
	}
}

func TestWire_Ollama(t *testing.T) {
	clearKbaseEnv(t)
	t.Setenv(config.EnvEmbeddingProvider, "ollama")

	svc, cfg, closer, err := wire(t.TempDir())

	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, domain.AIProviderOllama, cfg.Embedding.Provider)
	assert.Equal(t, domain.DefaultOllamaModel, cfg.Embedding.Model)
	assert.NoError(t, closer())
}

func TestWire_MissingAPIKeyStillWires(t *testing.T) {
	clearKbaseEnv(t)
	dir := t.TempDir()
	artifactPath := filepath.Join(dir, "index")
	t.Setenv(config.EnvArtifactPath, artifactPath)

	svc, cfg, closer, err := wire(dir)
	require.NoError(t, err)
	assert.Equal(t, artifactPath, cfg.ArtifactPath)
	assert.NoError(t, closer())

	// Without a provider the query flow reports the missing index first.
	_, err = svc.Query(context.Background(), "q", domain.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestWire_ReadsConfigFile(t *testing.T) {
	clearKbaseEnv(t)
	t.Setenv(config.EnvEmbeddingProvider, "ollama")
	dir := t.TempDir()
	toml := "[chunk]\nsize = 500\noverlap = 50\n\n[search]\nk = 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o600))

	_, cfg, _, err := wire(dir)

	require.NoError(t, err)
	assert.Equal(t, domain.ChunkSettings{Size: 500, Overlap: 50}, cfg.Chunk)
	assert.Equal(t, 3, cfg.DefaultK)
}

func TestWire_InvalidConfig(t *testing.T) {
	clearKbaseEnv(t)
	t.Setenv(config.EnvEmbeddingConcurrency, "many")

	_, _, _, err := wire(t.TempDir())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
