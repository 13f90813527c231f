// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - OpenAI-compatible APIs (DeepSeek, OpenAI)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Decorators adding retries
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// One call is one provider request; batching is the caller's concern.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size, or 0 if not known
	// until the first response.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// RateLimiter paces outbound provider requests.
type RateLimiter interface {
	// Wait blocks until a request may be sent or ctx is done.
	Wait(ctx context.Context) error

	// RecordRateLimitError backs off after the provider reported a rate limit.
	RecordRateLimitError(retryAfterSeconds int)
}
