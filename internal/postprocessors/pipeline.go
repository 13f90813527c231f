// Package postprocessors provides the source-to-chunk processing pipeline.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
)

// Pipeline chains multiple PostProcessors and runs them in order.
// It implements the PostProcessorPipeline interface.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the source through all processors in order.
// The first processor receives nil documents and should create them.
// Subsequent processors receive and may modify the documents.
// The final documents must carry valid positional metadata.
func (p *Pipeline) Process(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: source document is nil", domain.ErrInvalidInput)
	}

	var docs []domain.Document

	for _, processor := range p.processors {
		var err error
		docs, err = processor.Process(ctx, raw, docs)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	for i := range docs {
		if err := docs[i].Metadata.Validate(); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
	}

	return docs, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
