// Package artifact persists vector indexes as a pair of files:
// <path>.index holds the graph and vectors, <path>.<generation>.docstore
// the documents.
package artifact

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
	"github.com/custodia-labs/kbase/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ArtifactStore = (*Store)(nil)

// Segment suffixes.
const (
	IndexSuffix    = ".index"
	DocstoreSuffix = ".docstore"
	tempSuffix     = ".tmp"
)

// headerMagic opens every index segment. The header that follows names the
// document segment the graph was saved with.
var headerMagic = []byte("KBAX")

// Store saves and loads index artifacts on any afs-supported storage.
// Plain paths are resolved against the working directory.
//
// Every save writes its document segment under a fresh generation name and
// then replaces the index segment, whose header names that generation. The
// index rename is the commit point: until it lands, readers keep seeing the
// previous pair. Superseded generations are removed after the commit.
type Store struct {
	fs     afs.Service
	codec  driven.IndexCodec
	rename func(oldpath, newpath string) error
}

// NewStore creates a store using codec for the segment format.
func NewStore(codec driven.IndexCodec) *Store {
	return &Store{
		fs:     afs.New(),
		codec:  codec,
		rename: os.Rename,
	}
}

// Save writes idx to path, replacing any previous artifact.
func (s *Store) Save(ctx context.Context, path string, idx driven.VectorIndex) error {
	if idx == nil {
		return fmt.Errorf("%w: nil index", domain.ErrPersistence)
	}
	base := location(path)

	graph, docs, err := s.codec.Encode(idx)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrPersistence, err)
	}

	name := generationName(base)
	docPath := sibling(base, name)
	if err := s.write(ctx, docPath, docs); err != nil {
		return err
	}
	if err := s.write(ctx, base+IndexSuffix, frame(name, graph)); err != nil {
		_ = s.fs.Delete(ctx, docPath)
		return err
	}

	s.sweep(ctx, base, name)
	logger.Debug("Saved index (%d entries, %d+%d bytes) to %s", idx.Len(), len(graph), len(docs), base)
	return nil
}

// write places data at dest through a temporary file, so dest is either
// absent, the old content or the new content.
func (s *Store) write(ctx context.Context, dest string, data []byte) error {
	if isLocal(dest) {
		return s.writeLocal(dest, data)
	}

	// The temporary name keeps dest's extension so afs moves file to file.
	ext := filepath.Ext(dest)
	tmp := strings.TrimSuffix(dest, ext) + tempSuffix + ext
	if err := s.fs.Upload(ctx, tmp, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: upload %s: %w", domain.ErrPersistence, tmp, err)
	}
	if err := s.fs.Move(ctx, tmp, dest); err != nil {
		// Some storages refuse to move onto an existing object.
		_ = s.fs.Delete(ctx, dest)
		if err = s.fs.Move(ctx, tmp, dest); err != nil {
			_ = s.fs.Delete(ctx, tmp)
			return fmt.Errorf("%w: move %s: %w", domain.ErrPersistence, dest, err)
		}
	}
	return nil
}

func (s *Store) writeLocal(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrPersistence, dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*"+tempSuffix)
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %w", domain.ErrPersistence, dest, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %w", domain.ErrPersistence, tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", domain.ErrPersistence, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", domain.ErrPersistence, tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), file.DefaultFileOsMode); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", domain.ErrPersistence, tmp.Name(), err)
	}
	if err := s.rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("%w: rename onto %s: %w", domain.ErrPersistence, dest, err)
	}
	return nil
}

// Load reads the artifact at path.
func (s *Store) Load(ctx context.Context, path string) (driven.VectorIndex, error) {
	base := location(path)

	ok, err := s.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s%s", domain.ErrArtifactNotFound, base, IndexSuffix)
	}

	raw, err := s.fs.DownloadWithURL(ctx, base+IndexSuffix)
	if err != nil {
		return nil, fmt.Errorf("%w: read index segment: %w", domain.ErrPersistence, err)
	}
	name, graph, err := unframe(raw)
	if err != nil {
		return nil, err
	}
	docs, err := s.fs.DownloadWithURL(ctx, sibling(base, name))
	if err != nil {
		return nil, fmt.Errorf("%w: read document segment %s: %w", domain.ErrPersistence, name, err)
	}

	idx, err := s.codec.Decode(graph, docs)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded index (%d entries, dimension %d) from %s", idx.Len(), idx.Dimension(), base)
	return idx, nil
}

// Exists reports whether the index segment exists at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := s.fs.Exists(ctx, location(path)+IndexSuffix)
	if err != nil {
		return false, fmt.Errorf("%w: stat: %w", domain.ErrPersistence, err)
	}
	return ok, nil
}

// Delete removes the index segment and every document generation.
// Missing segments are not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	base := location(path)
	seg := base + IndexSuffix

	// Index first, so a partial delete leaves the artifact absent.
	ok, err := s.fs.Exists(ctx, seg)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", domain.ErrPersistence, seg, err)
	}
	if ok {
		if err := s.fs.Delete(ctx, seg); err != nil {
			return fmt.Errorf("%w: delete %s: %w", domain.ErrPersistence, seg, err)
		}
	}
	s.sweep(ctx, base, "")
	return nil
}

// sweep removes document generations of base other than keep.
// Failures are logged; stale generations are never read.
func (s *Store) sweep(ctx context.Context, base, keep string) {
	dir := sibling(base, "")
	objects, err := s.fs.List(ctx, dir)
	if err != nil {
		logger.Debug("List %s: %v", dir, err)
		return
	}
	for _, obj := range objects {
		if obj.IsDir() || obj.Name() == keep || !isGeneration(base, obj.Name()) {
			continue
		}
		if err := s.fs.Delete(ctx, obj.URL()); err != nil {
			logger.Warn("Could not remove stale segment %s: %v", obj.URL(), err)
		}
	}
}

// generationName returns a fresh document segment name for base.
func generationName(base string) string {
	return baseName(base) + "." + uuid.NewString() + DocstoreSuffix
}

// isGeneration reports whether name is a document segment of base.
func isGeneration(base, name string) bool {
	prefix := baseName(base) + "."
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, DocstoreSuffix) {
		return false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, prefix), DocstoreSuffix)
	return len(id) == 36 && uuid.Validate(id) == nil
}

// frame prefixes graph with the header naming its document segment.
func frame(docstore string, graph []byte) []byte {
	out := make([]byte, 0, len(headerMagic)+2+len(docstore)+len(graph))
	out = append(out, headerMagic...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(docstore)))
	out = append(out, docstore...)
	return append(out, graph...)
}

// unframe splits an index segment into its document segment name and graph.
func unframe(raw []byte) (string, []byte, error) {
	if len(raw) < len(headerMagic)+2 || !bytes.Equal(raw[:len(headerMagic)], headerMagic) {
		return "", nil, fmt.Errorf("%w: index segment has no header", domain.ErrPersistence)
	}
	rest := raw[len(headerMagic):]
	n := int(binary.BigEndian.Uint16(rest))
	rest = rest[2:]
	if n == 0 || n > len(rest) {
		return "", nil, fmt.Errorf("%w: index segment header is truncated", domain.ErrPersistence)
	}
	name := string(rest[:n])
	if strings.ContainsAny(name, `/\`) {
		return "", nil, fmt.Errorf("%w: invalid document segment name %q", domain.ErrPersistence, name)
	}
	return name, rest[n:], nil
}

// sibling returns name in the same directory as base.
func sibling(base, name string) string {
	i := strings.LastIndexAny(base, `/\`)
	return base[:i+1] + name
}

func baseName(base string) string {
	return base[strings.LastIndexAny(base, `/\`)+1:]
}

func isLocal(p string) bool {
	return !strings.Contains(p, "://")
}

// location turns a plain path into an absolute one; URLs pass through.
func location(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
