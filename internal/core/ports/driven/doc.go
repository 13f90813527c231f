// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceReader: Reads the knowledge-base source
//   - PostProcessorPipeline: Cuts a source into chunk documents
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndexBuilder: Builds the ANN index from embedded chunks
//   - ArtifactStore: Persists and loads the index artifact
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RateLimiter: Paces embedding requests beyond the batch delay
//   - FlowTracker: Observes ingest/query state transitions
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
