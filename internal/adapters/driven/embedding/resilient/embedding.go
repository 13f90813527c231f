// Package resilient wraps an embedding service with retries.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
	"github.com/custodia-labs/kbase/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Config controls the retry policy.
type Config struct {
	// MaxAttempts is the total number of tries per text, including the first.
	MaxAttempts int

	// InitialDelay is the pause before the first retry. Later pauses double.
	InitialDelay time.Duration
}

// DefaultInitialDelay is the first retry pause when none is configured.
const DefaultInitialDelay = 500 * time.Millisecond

// EmbeddingService retries failed Embed calls with exponential backoff.
// Input and authentication errors are returned immediately.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	retrier retry.Retry[[]float32]
}

// Wrap returns inner decorated with retries, or inner itself when
// MaxAttempts allows a single try only.
func Wrap(inner driven.EmbeddingService, cfg Config) driven.EmbeddingService {
	if inner == nil || cfg.MaxAttempts <= 1 {
		return inner
	}
	return New(inner, cfg)
}

// New creates a retrying embedding service.
func New(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}

	return &EmbeddingService{
		inner: inner,
		retrier: retry.New[[]float32](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    2.0,
			// Retrying cannot fix the request itself.
			NonRetryableErrors: []error{domain.ErrInvalidInput, domain.ErrAuthInvalid},
		}),
	}
}

// Embed calls the wrapped service until it succeeds or the attempts run out.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	attempt := 0
	vec, err := s.retrier.Do(ctx, func(ctx context.Context) ([]float32, error) {
		attempt++
		if attempt > 1 {
			logger.Debug("Retrying embedding request (attempt %d)", attempt)
		}
		return s.inner.Embed(ctx, text)
	})
	if err == nil {
		return vec, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !errors.Is(err, domain.ErrProvider) && !errors.Is(err, domain.ErrInvalidInput) {
		err = fmt.Errorf("%w: %w", domain.ErrProvider, err)
	}
	return nil, err
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping checks the wrapped service once, without retries.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error { return s.inner.Close() }
