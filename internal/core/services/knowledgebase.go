package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
	"github.com/custodia-labs/kbase/internal/core/ports/driving"
	"github.com/custodia-labs/kbase/internal/logger"
)

// Ensure KnowledgeBaseService implements the interface.
var _ driving.KnowledgeBaseService = (*KnowledgeBaseService)(nil)

// PipelineFactory builds the chunking pipeline for one ingest.
type PipelineFactory func(chunkSize, overlap int) (driven.PostProcessorPipeline, error)

// KnowledgeBaseService runs the ingest and query flows.
// Each flow is strictly sequential apart from the embedding batches,
// and any failing step aborts the flow without retries.
type KnowledgeBaseService struct {
	cfg      domain.KnowledgeBaseConfig
	source   driven.SourceReader
	pipeline PipelineFactory
	batcher  *EmbeddingBatcher
	builder  driven.VectorIndexBuilder
	store    driven.ArtifactStore
	flows    driven.FlowTrackerFactory
	model    string
}

// NewKnowledgeBaseService creates a knowledge-base service.
// All configuration comes from cfg; the service never reads the environment.
func NewKnowledgeBaseService(
	cfg domain.KnowledgeBaseConfig,
	source driven.SourceReader,
	pipeline PipelineFactory,
	embedder driven.EmbeddingService,
	builder driven.VectorIndexBuilder,
	store driven.ArtifactStore,
) *KnowledgeBaseService {
	svc := &KnowledgeBaseService{
		cfg:      cfg,
		source:   source,
		pipeline: pipeline,
		builder:  builder,
		store:    store,
		batcher: NewEmbeddingBatcher(embedder, BatcherConfig{
			Concurrency: cfg.Embedding.Concurrency,
			BatchDelay:  cfg.Embedding.BatchDelay,
		}),
		model: cfg.Embedding.Model,
	}
	if embedder != nil {
		svc.model = embedder.ModelName()
	}
	return svc
}

// SetRateLimiter paces embedding requests in addition to the batch delay.
func (s *KnowledgeBaseService) SetRateLimiter(limiter driven.RateLimiter) {
	s.batcher.cfg.Limiter = limiter
}

// SetFlowTracker sets the factory used to observe flow state transitions.
func (s *KnowledgeBaseService) SetFlowTracker(flows driven.FlowTrackerFactory) {
	s.flows = flows
}

// Ingest rebuilds the knowledge base from one source.
func (s *KnowledgeBaseService) Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResult, error) {
	start := time.Now()
	req = s.ingestDefaults(req)

	logger.Section("Ingest")
	logger.Debug("Source: %s, chunk size: %d, overlap: %d, output: %s",
		req.SourcePath, req.ChunkSize, req.ChunkOverlap, req.ArtifactPath)

	result := domain.IngestResult{ArtifactPath: req.ArtifactPath}

	flow, err := s.newFlow(true)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	count, err := s.ingest(ctx, req, flow)
	result.Duration = time.Since(start)
	if err != nil {
		step := flow.State()
		flow.Fail(err)
		logger.Error(err, "ingest failed while %s", step)
		result.Error = err.Error()
		return result, err
	}

	flow.Advance()
	result.Success = true
	result.ChunkCount = count
	logger.Info("Indexed %d chunks into %s in %s", count, req.ArtifactPath, result.Duration)
	return result, nil
}

// ingest runs the ingest steps; flow enters each step as it starts.
func (s *KnowledgeBaseService) ingest(ctx context.Context, req domain.IngestRequest, flow driven.FlowTracker) (int, error) {
	raw, err := s.source.Read(ctx, req.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	if raw.IsBlank() {
		return 0, fmt.Errorf("%w: source %s is empty", domain.ErrInvalidInput, req.SourcePath)
	}

	flow.Advance()
	pipeline, err := s.pipeline(req.ChunkSize, req.ChunkOverlap)
	if err != nil {
		return 0, fmt.Errorf("build pipeline: %w", err)
	}
	docs, err := pipeline.Process(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("chunk source: %w", err)
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("%w: source %s produced no chunks", domain.ErrInvalidInput, req.SourcePath)
	}
	logger.Debug("Split %s into %d chunks", raw.FileName, len(docs))

	flow.Advance()
	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Content
	}
	vectors, err := s.batcher.EmbedAll(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	flow.Advance()
	entries := make([]domain.IndexEntry, len(docs))
	for i := range docs {
		entries[i] = domain.IndexEntry{Vector: vectors[i], Document: docs[i]}
	}
	idx, err := s.builder.Build(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}

	flow.Advance()
	if err := s.store.Save(ctx, req.ArtifactPath, idx); err != nil {
		return 0, fmt.Errorf("save index: %w", err)
	}

	return len(docs), nil
}

// Query embeds the query text and returns the k most similar chunks.
// It never builds an index; a missing artifact fails with ErrArtifactNotFound.
func (s *KnowledgeBaseService) Query(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.SearchResult, error) {
	opts = s.queryDefaults(opts)

	logger.Section("Query")
	logger.Debug("Query: %q, k: %d, index: %s", query, opts.K, opts.ArtifactPath)

	flow, err := s.newFlow(false)
	if err != nil {
		return nil, err
	}

	results, err := s.query(ctx, query, opts, flow)
	if err != nil {
		flow.Fail(err)
		return nil, err
	}

	flow.Advance()
	logger.Debug("Returning %d results", len(results))
	return results, nil
}

func (s *KnowledgeBaseService) query(ctx context.Context, query string, opts domain.QueryOptions, flow driven.FlowTracker) ([]domain.SearchResult, error) {
	idx, err := s.store.Load(ctx, opts.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	flow.Advance()
	vec, err := s.batcher.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	flow.Advance()
	results, err := idx.Search(ctx, vec, opts.K)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}

// Search is Query for callers that want a list no matter what:
// any failure is logged and yields an empty result.
func (s *KnowledgeBaseService) Search(ctx context.Context, query string, opts domain.QueryOptions) []domain.SearchResult {
	results, err := s.Query(ctx, query, opts)
	if err != nil {
		logger.Warn("search failed: %v", err)
		return []domain.SearchResult{}
	}
	return results
}

// Inspect loads the artifact at path and summarises it.
func (s *KnowledgeBaseService) Inspect(ctx context.Context, path string) (*domain.IndexInfo, error) {
	if path == "" {
		path = s.cfg.ArtifactPath
	}

	idx, err := s.store.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	seen := make(map[string]bool)
	var sources []string
	for _, e := range idx.Entries() {
		src := e.Document.Metadata.SourcePath
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	sort.Strings(sources)

	return &domain.IndexInfo{
		ArtifactPath: path,
		Entries:      idx.Len(),
		Dimensions:   idx.Dimension(),
		Model:        s.model,
		Sources:      sources,
	}, nil
}

// ingestDefaults fills empty request fields from the configuration.
// A zero ChunkSize takes both size and overlap from the configuration.
func (s *KnowledgeBaseService) ingestDefaults(req domain.IngestRequest) domain.IngestRequest {
	if strings.TrimSpace(req.SourcePath) == "" {
		req.SourcePath = s.cfg.SourcePath
	}
	if req.ArtifactPath == "" {
		req.ArtifactPath = s.cfg.ArtifactPath
	}
	if req.ChunkSize == 0 {
		req.ChunkSize = s.cfg.Chunk.Size
		req.ChunkOverlap = s.cfg.Chunk.Overlap
	}
	return req
}

func (s *KnowledgeBaseService) queryDefaults(opts domain.QueryOptions) domain.QueryOptions {
	if opts.K <= 0 {
		opts.K = s.cfg.DefaultK
	}
	if opts.K <= 0 {
		opts.K = domain.DefaultK
	}
	if opts.ArtifactPath == "" {
		opts.ArtifactPath = s.cfg.ArtifactPath
	}
	return opts
}

func (s *KnowledgeBaseService) newFlow(ingest bool) (driven.FlowTracker, error) {
	if s.flows == nil {
		if ingest {
			return newSequenceFlow(domain.IngestFlow), nil
		}
		return newSequenceFlow(domain.QueryFlow), nil
	}
	if ingest {
		return s.flows.NewIngestFlow()
	}
	return s.flows.NewQueryFlow()
}
