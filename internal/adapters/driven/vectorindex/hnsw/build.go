package hnsw

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.VectorIndexBuilder = (*Builder)(nil)

// Builder constructs HNSW indexes.
type Builder struct {
	cfg Config
}

// NewBuilder creates a builder. Out-of-range parameters fall back to defaults.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg.withDefaults()}
}

// Build indexes entries in order; entry i becomes node i.
func (b *Builder) Build(ctx context.Context, entries []domain.IndexEntry) (driven.VectorIndex, error) {
	idx, err := b.build(ctx, entries)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func (b *Builder) build(ctx context.Context, entries []domain.IndexEntry) (*Index, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries to index", domain.ErrInvalidInput)
	}
	dim := len(entries[0].Vector)
	if dim == 0 {
		return nil, fmt.Errorf("%w: entry 0 has an empty vector", domain.ErrInvalidInput)
	}

	ix := &Index{
		cfg:     b.cfg,
		dim:     dim,
		entries: entries,
		mags:    make([]float32, len(entries)),
		links:   make([][][]int32, len(entries)),
	}
	for i, e := range entries {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("%w: entry %d has dimension %d, expected %d", domain.ErrInvalidInput, i, len(e.Vector), dim)
		}
		ix.mags[i] = magnitudeOf(e.Vector)
		if ix.mags[i] == 0 {
			return nil, fmt.Errorf("%w: entry %d has a zero vector", domain.ErrInvalidInput, i)
		}
	}

	rng := rand.New(rand.NewSource(b.cfg.Seed))
	mult := b.cfg.levelMultiplier()
	for i := range entries {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		level := int(math.Floor(-math.Log(1-rng.Float64()) * mult))
		ix.insert(int32(i), level)
	}
	return ix, nil
}

// insert links node q into every layer up to level.
func (ix *Index) insert(q int32, level int) {
	ix.links[q] = make([][]int32, level+1)
	if q == 0 {
		ix.entry = 0
		ix.maxLevel = level
		return
	}

	vec := ix.entries[q].Vector
	qmag := ix.mags[q]

	ep := ix.entry
	for layer := ix.maxLevel; layer > level; layer-- {
		ep = ix.greedy(vec, qmag, ep, layer)
	}

	for layer := min(level, ix.maxLevel); layer >= 0; layer-- {
		found := ix.searchLayer(vec, qmag, ep, ix.cfg.EfConstruction, layer)
		neighbours := ix.selectNeighbours(found, ix.cfg.M)
		ix.links[q][layer] = neighbours

		limit := ix.cfg.maxConnections(layer)
		for _, n := range neighbours {
			ix.links[n][layer] = append(ix.links[n][layer], q)
			if len(ix.links[n][layer]) > limit {
				ix.shrink(n, layer, limit)
			}
		}
		ep = found[0].id
	}

	if level > ix.maxLevel {
		ix.maxLevel = level
		ix.entry = q
	}
}

// selectNeighbours keeps candidates that are closer to the new node than
// to any neighbour already kept, then fills up with the closest of the rest.
// candidates must be sorted closest first.
func (ix *Index) selectNeighbours(candidates []candidate, m int) []int32 {
	if len(candidates) <= m {
		ids := make([]int32, len(candidates))
		for i, c := range candidates {
			ids[i] = c.id
		}
		return ids
	}

	selected := make([]int32, 0, m)
	var skipped []int32
	for _, c := range candidates {
		if len(selected) == m {
			break
		}
		diverse := true
		for _, s := range selected {
			if ix.distance(ix.entries[c.id].Vector, ix.mags[c.id], s) < c.dist {
				diverse = false
				break
			}
		}
		if diverse {
			selected = append(selected, c.id)
		} else {
			skipped = append(skipped, c.id)
		}
	}
	for _, id := range skipped {
		if len(selected) == m {
			break
		}
		selected = append(selected, id)
	}
	return selected
}

// shrink trims node n's neighbour list on layer to its limit.
func (ix *Index) shrink(n int32, layer, limit int) {
	vec := ix.entries[n].Vector
	mag := ix.mags[n]

	links := ix.links[n][layer]
	candidates := make([]candidate, len(links))
	for i, id := range links {
		candidates[i] = candidate{id: id, dist: ix.distance(vec, mag, id)}
	}
	sort.Slice(candidates, func(i, j int) bool { return closer(candidates[i], candidates[j]) })
	ix.links[n][layer] = ix.selectNeighbours(candidates, limit)
}
