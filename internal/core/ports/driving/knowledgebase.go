package driving

import (
	"context"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

// KnowledgeBaseService is the entry point for building and querying
// the knowledge base.
type KnowledgeBaseService interface {
	// Ingest reads, chunks, embeds, indexes and persists one source.
	// The result is always populated; on failure it carries the reason
	// and the error is returned as well. Nothing is persisted on failure.
	Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResult, error)

	// Query returns the k most similar chunks with typed errors.
	Query(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.SearchResult, error)

	// Search is Query that degrades to an empty list on failure.
	Search(ctx context.Context, query string, opts domain.QueryOptions) []domain.SearchResult

	// Inspect summarises the persisted index at path.
	Inspect(ctx context.Context, path string) (*domain.IndexInfo, error)
}
