package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

func newReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleIndexResource(t *testing.T) {
	ctx := context.Background()

	t.Run("describes the index", func(t *testing.T) {
		kb := &mockKnowledgeBase{info: &domain.IndexInfo{
			ArtifactPath: "data/vectorstore",
			Entries:      4,
			Dimensions:   1024,
			Model:        "deepseek-embed",
			Sources:      []string{"data/real-estate-knowledge.md"},
		}}
		server, err := NewServer(&Ports{KnowledgeBase: kb, ArtifactPath: "data/vectorstore"})
		require.NoError(t, err)

		result, err := server.handleIndexResource(ctx, newReadResourceRequest("kbase://index"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "kbase://index", result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Equal(t, "data/vectorstore", kb.lastPath)

		var info indexInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
		assert.Equal(t, 4, info.Entries)
		assert.Equal(t, 1024, info.Dimensions)
		assert.Equal(t, "deepseek-embed", info.Model)
		assert.Equal(t, []string{"data/real-estate-knowledge.md"}, info.Sources)
	})

	t.Run("empty sources encode as an array", func(t *testing.T) {
		kb := &mockKnowledgeBase{info: &domain.IndexInfo{}}
		server, err := NewServer(&Ports{KnowledgeBase: kb})
		require.NoError(t, err)

		result, err := server.handleIndexResource(ctx, newReadResourceRequest("kbase://index"))
		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"sources": []`)
	})

	t.Run("missing index is not found", func(t *testing.T) {
		kb := &mockKnowledgeBase{err: domain.ErrArtifactNotFound}
		server, err := NewServer(&Ports{KnowledgeBase: kb})
		require.NoError(t, err)

		result, err := server.handleIndexResource(ctx, newReadResourceRequest("kbase://index"))
		require.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("other failures are wrapped", func(t *testing.T) {
		kb := &mockKnowledgeBase{err: errors.New("disk on fire")}
		server, err := NewServer(&Ports{KnowledgeBase: kb})
		require.NoError(t, err)

		_, err = server.handleIndexResource(ctx, newReadResourceRequest("kbase://index"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inspecting index")
	})
}
