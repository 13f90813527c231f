package mcp

import (
	"github.com/custodia-labs/kbase/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// KnowledgeBase answers queries against the persisted index.
	KnowledgeBase driving.KnowledgeBaseService

	// ArtifactPath overrides the configured index location. Optional.
	ArtifactPath string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.KnowledgeBase == nil {
		return ErrMissingKnowledgeBase
	}
	return nil
}
