package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to look up in the knowledge base"`
	K     int    `json:"k,omitempty" jsonschema:"number of chunks to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	ChunkID     string  `json:"chunk_id"`
	Source      string  `json:"source"`
	ChunkIndex  int     `json:"chunk_index"`
	TotalChunks int     `json:"total_chunks"`
	Score       float64 `json:"score"`
	Content     string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        SearchToolName,
		Description: "Retrieve the knowledge-base chunks most similar to a query",
	}, s.handleSearch)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.QueryOptions{K: input.K, ArtifactPath: s.ports.ArtifactPath}
	results, err := s.ports.KnowledgeBase.Query(ctx, input.Query, opts)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return nil, SearchOutput{}, fmt.Errorf("knowledge base not built yet, run kbase ingest: %w", err)
		}
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		doc := results[i].Document
		output.Results[i] = SearchResultOutput{
			ChunkID:     doc.ID,
			Source:      doc.Metadata.SourcePath,
			ChunkIndex:  doc.Metadata.ChunkIndex,
			TotalChunks: doc.Metadata.TotalChunks,
			Score:       results[i].Score,
			Content:     doc.Content,
		}
	}

	return nil, output, nil
}
