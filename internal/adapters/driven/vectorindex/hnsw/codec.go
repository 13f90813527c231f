package hnsw

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/viant/bintly"

	"github.com/custodia-labs/kbase/internal/checksum"
	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.IndexCodec = (*Codec)(nil)

const (
	graphMagic    = "kbase.hnsw.graph"
	docsMagic     = "kbase.hnsw.docs"
	formatVersion = 1
	checksumSize  = 8
)

// Codec serialises an Index into a graph segment and a document segment.
//
// Each segment is a bintly stream followed by an 8-byte big-endian
// HighwayHash of the stream. Both streams start with the same build id,
// so a graph is never paired with documents from another build.
type Codec struct {
	writers *bintly.Writers
	readers *bintly.Readers
}

// NewCodec creates a codec.
func NewCodec() *Codec {
	return &Codec{
		writers: bintly.NewWriters(),
		readers: bintly.NewReaders(),
	}
}

// Encode returns the graph and document segments of idx.
func (c *Codec) Encode(idx driven.VectorIndex) (graph, docs []byte, err error) {
	ix, ok := idx.(*Index)
	if !ok {
		return nil, nil, fmt.Errorf("%w: cannot encode index of type %T", domain.ErrPersistence, idx)
	}
	buildID := uuid.NewString()

	graph, err = c.seal(func(w *bintly.Writer) { ix.encodeGraph(w, buildID) })
	if err != nil {
		return nil, nil, err
	}
	docs, err = c.seal(func(w *bintly.Writer) { ix.encodeDocs(w, buildID) })
	if err != nil {
		return nil, nil, err
	}
	return graph, docs, nil
}

// Decode rebuilds an index from both segments.
func (c *Codec) Decode(graph, docs []byte) (idx driven.VectorIndex, err error) {
	graphBody, err := unseal(graph, "graph")
	if err != nil {
		return nil, err
	}
	docsBody, err := unseal(docs, "document")
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("%w: corrupt segment: %v", domain.ErrPersistence, r)
		}
	}()

	ix := &Index{}
	graphID, err := c.read(graphBody, func(r *bintly.Reader) (string, error) { return ix.decodeGraph(r) })
	if err != nil {
		return nil, err
	}
	docsID, err := c.read(docsBody, func(r *bintly.Reader) (string, error) { return ix.decodeDocs(r) })
	if err != nil {
		return nil, err
	}
	if graphID != docsID {
		return nil, fmt.Errorf("%w: segments belong to different builds (%s, %s)", domain.ErrPersistence, graphID, docsID)
	}
	return ix, nil
}

// seal encodes a stream and appends its checksum.
func (c *Codec) seal(encode func(w *bintly.Writer)) ([]byte, error) {
	w := c.writers.Get()
	defer c.writers.Put(w)

	encode(w)
	body := append([]byte(nil), w.Bytes()...)

	sum, err := checksum.Hash(body)
	if err != nil {
		return nil, fmt.Errorf("%w: checksum: %v", domain.ErrPersistence, err)
	}
	return binary.BigEndian.AppendUint64(body, sum), nil
}

// unseal verifies and strips the trailing checksum.
func unseal(segment []byte, name string) ([]byte, error) {
	if len(segment) < checksumSize {
		return nil, fmt.Errorf("%w: %s segment is truncated", domain.ErrPersistence, name)
	}
	body := segment[:len(segment)-checksumSize]
	want := binary.BigEndian.Uint64(segment[len(segment)-checksumSize:])

	got, err := checksum.Hash(body)
	if err != nil {
		return nil, fmt.Errorf("%w: checksum: %v", domain.ErrPersistence, err)
	}
	if got != want {
		return nil, fmt.Errorf("%w: %s segment checksum mismatch", domain.ErrPersistence, name)
	}
	return body, nil
}

func (c *Codec) read(body []byte, decode func(r *bintly.Reader) (string, error)) (string, error) {
	r := c.readers.Get()
	defer c.readers.Put(r)

	if err := r.FromBytes(body); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return decode(r)
}

func (ix *Index) encodeGraph(w *bintly.Writer, buildID string) {
	w.String(graphMagic)
	w.Int(formatVersion)
	w.String(buildID)

	w.Int(ix.cfg.M)
	w.Int(ix.cfg.MaxM0)
	w.Int(ix.cfg.EfConstruction)
	w.Int(ix.cfg.EfSearch)
	w.Int(int(ix.cfg.Seed))

	w.Int(ix.dim)
	w.Int(len(ix.entries))
	w.Int(int(ix.entry))
	w.Int(ix.maxLevel)

	for _, layers := range ix.links {
		w.Int(len(layers))
		for _, neighbours := range layers {
			w.Int(len(neighbours))
			for _, n := range neighbours {
				w.Int(int(n))
			}
		}
	}
	for _, e := range ix.entries {
		for _, v := range e.Vector {
			w.Float32(v)
		}
	}
}

func (ix *Index) decodeGraph(r *bintly.Reader) (string, error) {
	var magic, buildID string
	var version int
	r.String(&magic)
	r.Int(&version)
	if magic != graphMagic || version != formatVersion {
		return "", fmt.Errorf("%w: not a graph segment (version %d)", domain.ErrPersistence, version)
	}
	r.String(&buildID)

	var seed, count, entry int
	r.Int(&ix.cfg.M)
	r.Int(&ix.cfg.MaxM0)
	r.Int(&ix.cfg.EfConstruction)
	r.Int(&ix.cfg.EfSearch)
	r.Int(&seed)
	ix.cfg.Seed = int64(seed)

	r.Int(&ix.dim)
	r.Int(&count)
	r.Int(&entry)
	r.Int(&ix.maxLevel)
	if count <= 0 || ix.dim <= 0 || entry < 0 || entry >= count {
		return "", fmt.Errorf("%w: invalid graph header", domain.ErrPersistence)
	}
	ix.entry = int32(entry)

	ix.links = make([][][]int32, count)
	for i := range ix.links {
		var layers int
		r.Int(&layers)
		ix.links[i] = make([][]int32, layers)
		for l := range ix.links[i] {
			var size int
			r.Int(&size)
			neighbours := make([]int32, size)
			for j := range neighbours {
				var n int
				r.Int(&n)
				if n < 0 || n >= count {
					return "", fmt.Errorf("%w: neighbour %d out of range", domain.ErrPersistence, n)
				}
				neighbours[j] = int32(n)
			}
			ix.links[i][l] = neighbours
		}
	}

	ix.entries = make([]domain.IndexEntry, count)
	ix.mags = make([]float32, count)
	for i := range ix.entries {
		vec := make(domain.Vector, ix.dim)
		for j := range vec {
			r.Float32(&vec[j])
		}
		ix.entries[i].Vector = vec
	}
	for i := range ix.entries {
		ix.mags[i] = magnitudeOf(ix.entries[i].Vector)
	}
	return buildID, nil
}

func (ix *Index) encodeDocs(w *bintly.Writer, buildID string) {
	w.String(docsMagic)
	w.Int(formatVersion)
	w.String(buildID)
	w.Int(len(ix.entries))
	for _, e := range ix.entries {
		d := e.Document
		w.String(d.ID)
		w.String(d.Content)
		w.String(d.Metadata.SourcePath)
		w.Int(d.Metadata.ChunkIndex)
		w.Int(d.Metadata.TotalChunks)
		w.String(d.Metadata.FileName)
	}
}

// decodeDocs must run after decodeGraph.
func (ix *Index) decodeDocs(r *bintly.Reader) (string, error) {
	var magic, buildID string
	var version, count int
	r.String(&magic)
	r.Int(&version)
	if magic != docsMagic || version != formatVersion {
		return "", fmt.Errorf("%w: not a document segment (version %d)", domain.ErrPersistence, version)
	}
	r.String(&buildID)
	r.Int(&count)
	if count != len(ix.entries) {
		return "", fmt.Errorf("%w: %d documents for %d vectors", domain.ErrPersistence, count, len(ix.entries))
	}
	for i := range ix.entries {
		d := &ix.entries[i].Document
		r.String(&d.ID)
		r.String(&d.Content)
		r.String(&d.Metadata.SourcePath)
		r.Int(&d.Metadata.ChunkIndex)
		r.Int(&d.Metadata.TotalChunks)
		r.String(&d.Metadata.FileName)
	}
	return buildID, nil
}
