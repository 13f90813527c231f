package driven

import "context"

// ArtifactStore persists a VectorIndex as the two-segment artifact
// <path>.index and the document segment it names.
type ArtifactStore interface {
	// Save writes both segments, replacing any previous artifact at path.
	Save(ctx context.Context, path string, idx VectorIndex) error

	// Load reads the artifact at path.
	// Returns domain.ErrArtifactNotFound if no index segment exists.
	Load(ctx context.Context, path string) (VectorIndex, error)

	// Exists reports whether an index segment exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes both segments.
	Delete(ctx context.Context, path string) error
}

// IndexCodec serialises an index into its two segments and back.
type IndexCodec interface {
	// Encode returns the graph segment and the document segment.
	Encode(idx VectorIndex) (graph, docs []byte, err error)

	// Decode rebuilds an index from both segments.
	Decode(graph, docs []byte) (VectorIndex, error)
}
