// Package chunker provides a recursive, separator-aware text chunking processor.
package chunker

import (
	"context"
	"fmt"

	"github.com/custodia-labs/kbase/internal/checksum"
	"github.com/custodia-labs/kbase/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits a source into chunk documents.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// WithSeparators replaces the separator list, coarsest first.
func WithSeparators(separators []string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = separators
		}
	}
}

// New creates a new chunker processor with the given options.
// Returns domain.ErrInvalidInput if the size or overlap are out of range.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validate(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the source content into documents.
// Input documents are ignored; this processor creates new ones.
func (p *Processor) Process(ctx context.Context, raw *domain.RawDocument, _ []domain.Document) ([]domain.Document, error) {
	if raw == nil || raw.Content == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks, err := SplitWith(raw.Content, p.chunkSize, p.overlap, p.separators)
	if err != nil {
		return nil, err
	}

	prefix := checksum.String(raw.URI)
	docs := make([]domain.Document, len(chunks))
	for i, content := range chunks {
		docs[i] = domain.Document{
			ID:      fmt.Sprintf("%s-%d", prefix, i),
			Content: content,
			Metadata: domain.DocumentMetadata{
				SourcePath:  raw.URI,
				ChunkIndex:  i,
				TotalChunks: len(chunks),
				FileName:    raw.FileName,
			},
		}
	}
	return docs, nil
}
