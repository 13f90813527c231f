package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
	"github.com/custodia-labs/kbase/internal/logger"
)

// BatcherConfig controls how embedding requests are paced.
type BatcherConfig struct {
	// Concurrency is the number of requests in flight per batch.
	Concurrency int

	// BatchDelay is the pause between consecutive batches.
	BatchDelay time.Duration

	// Limiter optionally paces individual requests. Can be nil.
	Limiter driven.RateLimiter
}

// EmbeddingBatcher turns chunk texts into vectors using bounded,
// batched concurrency. A run either returns every vector or fails.
type EmbeddingBatcher struct {
	client driven.EmbeddingService
	cfg    BatcherConfig
}

// NewEmbeddingBatcher creates a batcher over client.
// Non-positive concurrency falls back to the default.
func NewEmbeddingBatcher(client driven.EmbeddingService, cfg BatcherConfig) *EmbeddingBatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = domain.DefaultConcurrency
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	return &EmbeddingBatcher{client: client, cfg: cfg}
}

// EmbedAll embeds every chunk. result[i] is the embedding of chunks[i].
//
// Chunks are processed in contiguous batches of Concurrency requests.
// Each batch runs concurrently and must finish before the delay and
// the next batch. The first failure cancels the batch and fails the run.
func (b *EmbeddingBatcher) EmbedAll(ctx context.Context, chunks []string) ([]domain.Vector, error) {
	if b.client == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	for i, text := range chunks {
		if err := validateText(text); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	results := make([]domain.Vector, len(chunks))
	size := b.cfg.Concurrency
	batches := (len(chunks) + size - 1) / size

	for batch := 0; batch < batches; batch++ {
		start := batch * size
		end := min(start+size, len(chunks))
		logger.Debug("Processing embedding batch %d/%d", batch+1, batches)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				vec, err := b.embed(gctx, chunks[i])
				if err != nil {
					return fmt.Errorf("embed chunk %d: %w", i, err)
				}
				results[i] = vec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}

		if batch < batches-1 {
			if err := sleep(ctx, b.cfg.BatchDelay); err != nil {
				return nil, err
			}
		}
	}

	if err := sameDimension(results); err != nil {
		return nil, err
	}
	return results, nil
}

// EmbedOne embeds a single text with the same validation as EmbedAll.
func (b *EmbeddingBatcher) EmbedOne(ctx context.Context, text string) (domain.Vector, error) {
	if b.client == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if err := validateText(text); err != nil {
		return nil, err
	}
	return b.embed(ctx, text)
}

func (b *EmbeddingBatcher) embed(ctx context.Context, text string) (domain.Vector, error) {
	if b.cfg.Limiter != nil {
		if err := b.cfg.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	vec, err := b.client.Embed(ctx, text)
	if err != nil {
		if b.cfg.Limiter != nil && errors.Is(err, domain.ErrRateLimited) {
			b.cfg.Limiter.RecordRateLimitError(0)
		}
		return nil, err
	}
	if err := validateVector(vec); err != nil {
		return nil, err
	}
	return domain.Vector(vec), nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text to embed is empty", domain.ErrInvalidInput)
	}
	return nil
}

func validateVector(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrProvider)
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: embedding value %d is not finite", domain.ErrProvider, i)
		}
	}
	return nil
}

func sameDimension(vectors []domain.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: embedding %d has dimension %d, expected %d", domain.ErrProvider, i, len(v), dim)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
