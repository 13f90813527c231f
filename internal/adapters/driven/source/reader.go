// Package source reads knowledge-base documents from local paths or afs URLs.
package source

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/viant/afs"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// Reader loads source documents through afs.
type Reader struct {
	fs afs.Service
}

// NewReader creates a source reader.
func NewReader() *Reader {
	return &Reader{fs: afs.New()}
}

// Read returns the document at uri.
func (r *Reader) Read(ctx context.Context, uri string) (*domain.RawDocument, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("%w: source path is empty", domain.ErrInvalidInput)
	}
	location := uri
	if !strings.Contains(uri, "://") {
		if abs, err := filepath.Abs(uri); err == nil {
			location = abs
		}
	}

	ok, err := r.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", uri, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: source %s", domain.ErrNotFound, uri)
	}

	data, err := r.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: source %s is not UTF-8 text", domain.ErrInvalidInput, uri)
	}

	return &domain.RawDocument{
		URI:      uri,
		FileName: path.Base(filepath.ToSlash(uri)),
		Content:  string(data),
	}, nil
}
