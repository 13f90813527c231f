package domain

// DefaultK is the number of results returned when none is requested.
const DefaultK = 5

// QueryOptions configures a knowledge-base query.
type QueryOptions struct {
	// K is the maximum number of results.
	K int

	// ArtifactPath identifies the persisted index to search.
	// Empty means the configured default.
	ArtifactPath string
}

// SearchResult represents a single similarity hit.
type SearchResult struct {
	// Document is the matched chunk.
	Document Document

	// Score is the cosine similarity between the query and the chunk.
	// Higher is more relevant.
	Score float64
}

// IndexInfo summarises a persisted index.
type IndexInfo struct {
	// ArtifactPath is the location the index was loaded from.
	ArtifactPath string

	// Entries is the number of indexed chunks.
	Entries int

	// Dimensions is the embedding vector size.
	Dimensions int

	// Model is the embedding model queries are embedded with.
	Model string

	// Sources lists the distinct source paths in the index.
	Sources []string
}
