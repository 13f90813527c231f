package cli

import (
	"fmt"

	"github.com/custodia-labs/kbase/internal/adapters/driven/ai"
	"github.com/custodia-labs/kbase/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbase/internal/adapters/driven/source"
	"github.com/custodia-labs/kbase/internal/adapters/driven/storage/artifact"
	"github.com/custodia-labs/kbase/internal/adapters/driven/vectorindex/hnsw"
	"github.com/custodia-labs/kbase/internal/config"
	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
	"github.com/custodia-labs/kbase/internal/core/services"
	"github.com/custodia-labs/kbase/internal/logger"
	"github.com/custodia-labs/kbase/internal/postprocessors"
	"github.com/custodia-labs/kbase/internal/ratelimit"
	"github.com/custodia-labs/kbase/internal/statemachine"
)

// wire loads the configuration and assembles the knowledge-base service.
func wire(dir string) (*services.KnowledgeBaseService, domain.KnowledgeBaseConfig, func() error, error) {
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, domain.KnowledgeBaseConfig{}, nil, fmt.Errorf("open config: %w", err)
	}
	cfg, err := config.Load(store)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("load config %s: %w", store.Path(), err)
	}

	logger.SetFormat(cfg.Log.Format)
	logger.SetVerbose(verbose || cfg.Log.Verbose)
	logger.Debug("Config: %s", store.Path())

	embedder, err := ai.NewEmbeddingService(cfg.Embedding)
	if err != nil {
		// Ingest and query report ErrEmbeddingUnavailable; other commands still work.
		logger.Warn("%v (set %s)", err, config.EnvAPIKey)
	}

	flows, err := statemachine.NewFactory()
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("build flow machines: %w", err)
	}

	svc := services.NewKnowledgeBaseService(
		cfg,
		source.NewReader(),
		newPipeline,
		embedder,
		hnsw.NewBuilder(hnsw.Config{
			M:              cfg.Index.M,
			EfConstruction: cfg.Index.EfConstruction,
			EfSearch:       cfg.Index.EfSearch,
			Seed:           hnsw.DefaultConfig().Seed,
		}),
		artifact.NewStore(hnsw.NewCodec()),
	)
	svc.SetFlowTracker(flows)
	if rl := ratelimit.New(ratelimit.Config{RequestsPerSecond: cfg.Embedding.RequestsPerSecond}); rl != nil {
		svc.SetRateLimiter(rl)
	}

	closer := func() error {
		if embedder == nil {
			return nil
		}
		return embedder.Close()
	}
	return svc, cfg, closer, nil
}

func newPipeline(chunkSize, overlap int) (driven.PostProcessorPipeline, error) {
	p, err := postprocessors.NewChunkingPipeline(chunkSize, overlap)
	if err != nil {
		return nil, err
	}
	return p, nil
}
