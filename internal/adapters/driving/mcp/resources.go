package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for kbase resources.
	uriScheme = "kbase://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         IndexResourceURI,
		Name:        "index",
		Description: "Summary of the persisted knowledge-base index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// indexInfo is the JSON shape of the index resource.
type indexInfo struct {
	ArtifactPath string   `json:"artifact_path"`
	Entries      int      `json:"entries"`
	Dimensions   int      `json:"dimensions"`
	Model        string   `json:"model"`
	Sources      []string `json:"sources"`
}

// handleIndexResource describes the index, or reports it missing.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info, err := s.ports.KnowledgeBase.Inspect(ctx, s.ports.ArtifactPath)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("inspecting index: %w", err)
	}

	sources := info.Sources
	if sources == nil {
		sources = []string{}
	}

	data, err := json.MarshalIndent(indexInfo{
		ArtifactPath: info.ArtifactPath,
		Entries:      info.Entries,
		Dimensions:   info.Dimensions,
		Model:        info.Model,
		Sources:      sources,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
