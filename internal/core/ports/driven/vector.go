package driven

import (
	"context"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

// VectorIndex provides semantic similarity search over a built index.
// An index is immutable once built; a rebuild produces a new one.
type VectorIndex interface {
	// Search finds up to k nearest neighbours to the query vector,
	// ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error)

	// Len returns the number of indexed entries.
	Len() int

	// Dimension returns the vector size shared by every entry.
	Dimension() int

	// Entries returns the indexed entries in node order.
	Entries() []domain.IndexEntry
}

// VectorIndexBuilder constructs a VectorIndex from embedded chunks.
type VectorIndexBuilder interface {
	// Build indexes every entry. Entries must be non-empty and share one dimension.
	Build(ctx context.Context, entries []domain.IndexEntry) (VectorIndex, error)
}
