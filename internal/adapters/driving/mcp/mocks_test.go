package mcp

import (
	"context"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

// mockKnowledgeBase is a mock implementation of driving.KnowledgeBaseService.
type mockKnowledgeBase struct {
	results []domain.SearchResult
	info    *domain.IndexInfo
	err     error

	lastQuery string
	lastOpts  domain.QueryOptions
	lastPath  string
}

func (m *mockKnowledgeBase) Ingest(_ context.Context, _ domain.IngestRequest) (domain.IngestResult, error) {
	return domain.IngestResult{}, m.err
}

func (m *mockKnowledgeBase) Query(
	_ context.Context,
	query string,
	opts domain.QueryOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockKnowledgeBase) Search(
	ctx context.Context,
	query string,
	opts domain.QueryOptions,
) []domain.SearchResult {
	results, err := m.Query(ctx, query, opts)
	if err != nil {
		return []domain.SearchResult{}
	}
	return results
}

func (m *mockKnowledgeBase) Inspect(_ context.Context, path string) (*domain.IndexInfo, error) {
	m.lastPath = path
	return m.info, m.err
}
