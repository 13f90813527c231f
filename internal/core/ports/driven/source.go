package driven

import (
	"context"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

// SourceReader loads a knowledge-base source document.
type SourceReader interface {
	// Read returns the document at uri.
	// Returns domain.ErrNotFound if it does not exist.
	Read(ctx context.Context, uri string) (*domain.RawDocument, error)
}
