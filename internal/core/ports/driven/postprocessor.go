package driven

import (
	"context"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

// PostProcessor processes a source to produce chunk documents.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a source and returns chunk documents.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new documents.
	// If it modifies them, it receives and returns documents.
	Process(ctx context.Context, raw *domain.RawDocument, docs []domain.Document) ([]domain.Document, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the source through all processors in order.
	Process(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error)
}
