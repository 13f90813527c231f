package mcp

import "errors"

// ErrMissingKnowledgeBase is returned when the knowledge-base service is not provided.
var ErrMissingKnowledgeBase = errors.New("mcp: knowledge base service is required")
