// Package domain defines the core business entities for kbase.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: The knowledge-base source as read from storage
//   - Document: One chunk of the source with positional metadata
//   - IndexEntry: A document paired with its embedding vector
//   - SearchResult: A scored document returned by a similarity query
//   - KnowledgeBaseConfig: Explicit configuration for the pipeline
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
