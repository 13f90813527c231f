// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// KnowledgeBaseService runs the ingest and query flows.
// EmbeddingBatcher paces embedding requests for a whole document.
package services
