package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns retrieved chunks", func(t *testing.T) {
		kb := &mockKnowledgeBase{
			results: []domain.SearchResult{
				{
					Document: domain.Document{
						ID:      "a1b2-2",
						Content: "Closing costs usually run 2 to 5 percent.",
						Metadata: domain.DocumentMetadata{
							SourcePath:  "data/real-estate-knowledge.md",
							ChunkIndex:  2,
							TotalChunks: 4,
						},
					},
					Score: 0.87,
				},
			},
		}

		server, err := NewServer(&Ports{KnowledgeBase: kb, ArtifactPath: "data/vectorstore"})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "closing costs", K: 3})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "a1b2-2", output.Results[0].ChunkID)
		assert.Equal(t, "data/real-estate-knowledge.md", output.Results[0].Source)
		assert.Equal(t, 2, output.Results[0].ChunkIndex)
		assert.Equal(t, 4, output.Results[0].TotalChunks)
		assert.Equal(t, 0.87, output.Results[0].Score)
		assert.Contains(t, output.Results[0].Content, "Closing costs")

		assert.Equal(t, "closing costs", kb.lastQuery)
		assert.Equal(t, domain.QueryOptions{K: 3, ArtifactPath: "data/vectorstore"}, kb.lastOpts)
	})

	t.Run("zero k is left to the service default", func(t *testing.T) {
		kb := &mockKnowledgeBase{}
		server, err := NewServer(&Ports{KnowledgeBase: kb})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 0, kb.lastOpts.K)
	})

	t.Run("missing index explains how to build it", func(t *testing.T) {
		kb := &mockKnowledgeBase{err: fmt.Errorf("load index: %w", domain.ErrArtifactNotFound)}
		server, err := NewServer(&Ports{KnowledgeBase: kb})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
		assert.Contains(t, err.Error(), "kbase ingest")
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		kb := &mockKnowledgeBase{err: errors.New("search failed")}
		server, err := NewServer(&Ports{KnowledgeBase: kb})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}
