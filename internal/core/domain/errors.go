package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input: empty source
	// text, bad chunk parameters, or a query vector of the wrong dimension.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProvider indicates the embedding provider call failed
	// (bad status, malformed response, authentication).
	ErrProvider = errors.New("embedding provider error")

	// ErrArtifactNotFound indicates a query was attempted before any
	// successful ingest wrote the index artifact.
	ErrArtifactNotFound = errors.New("index artifact not found")

	// ErrPersistence indicates saving or loading the index artifact failed.
	ErrPersistence = errors.New("index persistence error")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Provider Errors. These are always reported together with ErrProvider.

	// ErrAuthInvalid indicates the provider rejected the credentials.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
