package domain

import "fmt"

// Document is one chunk of a knowledge-base source.
// Documents are created during ingestion and are immutable thereafter.
type Document struct {
	// ID is the stable identifier of the chunk.
	ID string

	// Content is the chunk text.
	Content string

	// Metadata locates the chunk within its source.
	Metadata DocumentMetadata
}

// DocumentMetadata describes where a Document came from.
type DocumentMetadata struct {
	// SourcePath is the URI of the source the chunk was cut from.
	SourcePath string

	// ChunkIndex is the ordinal position of the chunk (0-based).
	ChunkIndex int

	// TotalChunks is the number of chunks produced from the source.
	TotalChunks int

	// FileName is the base name of the source.
	FileName string
}

// Validate checks the positional invariants of the metadata.
func (m DocumentMetadata) Validate() error {
	if m.TotalChunks <= 0 {
		return fmt.Errorf("%w: total chunks must be positive, got %d", ErrInvalidInput, m.TotalChunks)
	}
	if m.ChunkIndex < 0 || m.ChunkIndex >= m.TotalChunks {
		return fmt.Errorf("%w: chunk index %d out of range [0,%d)", ErrInvalidInput, m.ChunkIndex, m.TotalChunks)
	}
	return nil
}

// Vector is an embedding produced by an embedding provider.
// Every vector stored in one index has the same length.
type Vector []float32

// IndexEntry pairs an embedding with the document it was computed from.
type IndexEntry struct {
	// Vector is the embedding of Document.Content.
	Vector Vector

	// Document is the chunk the vector represents.
	Document Document
}
