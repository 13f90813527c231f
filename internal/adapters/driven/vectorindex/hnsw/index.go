package hnsw

import (
	"container/heap"
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a built HNSW graph over immutable entries.
// It is safe for concurrent searches.
type Index struct {
	cfg     Config
	dim     int
	entries []domain.IndexEntry
	mags    []float32

	// links[node][layer] lists the node's neighbours on that layer.
	links    [][][]int32
	entry    int32
	maxLevel int
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Dimension returns the vector size shared by every entry.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Entries returns the indexed entries in node order.
func (ix *Index) Entries() []domain.IndexEntry {
	return ix.entries
}

// Config returns the graph parameters.
func (ix *Index) Config() Config {
	return ix.cfg
}

// Search returns up to k entries closest to query, most similar first.
// It returns min(k, Len()) results.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d", domain.ErrInvalidInput, len(query), ix.dim)
	}
	qmag := magnitudeOf(query)
	if qmag == 0 {
		return nil, fmt.Errorf("%w: query vector has zero magnitude", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ix.entries) == 0 {
		return []domain.SearchResult{}, nil
	}

	ef := max(ix.cfg.EfSearch, k)
	ep := ix.entry
	for layer := ix.maxLevel; layer > 0; layer-- {
		ep = ix.greedy(query, qmag, ep, layer)
	}
	found := ix.searchLayer(query, qmag, ep, ef, 0)

	want := min(k, len(ix.entries))
	if len(found) < want {
		found = ix.topUp(query, qmag, found, want)
	}
	if len(found) > want {
		found = found[:want]
	}

	results := make([]domain.SearchResult, len(found))
	for i, c := range found {
		results[i] = domain.SearchResult{
			Document: ix.entries[c.id].Document,
			Score:    float64(1 - c.dist),
		}
	}
	return results, nil
}

func (ix *Index) distance(q []float32, qmag float32, node int32) float32 {
	return cosineDistance(q, ix.entries[node].Vector, qmag, ix.mags[node])
}

// greedy walks layer towards q from ep and returns the closest node reached.
func (ix *Index) greedy(q []float32, qmag float32, ep int32, layer int) int32 {
	best := candidate{id: ep, dist: ix.distance(q, qmag, ep)}
	for changed := true; changed; {
		changed = false
		for _, n := range ix.links[best.id][layer] {
			c := candidate{id: n, dist: ix.distance(q, qmag, n)}
			if closer(c, best) {
				best = c
				changed = true
			}
		}
	}
	return best.id
}

// searchLayer is a best-first search of width ef on one layer.
// It returns the candidates found, closest first.
func (ix *Index) searchLayer(q []float32, qmag float32, ep int32, ef, layer int) []candidate {
	visited := make(map[int32]struct{}, ef*4)
	visited[ep] = struct{}{}

	start := candidate{id: ep, dist: ix.distance(q, qmag, ep)}
	frontier := &nearestFirst{start}
	best := &furthestFirst{start}

	for frontier.Len() > 0 {
		c := heap.Pop(frontier).(candidate)
		if best.Len() >= ef && closer((*best)[0], c) {
			break
		}
		for _, n := range ix.links[c.id][layer] {
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}

			cand := candidate{id: n, dist: ix.distance(q, qmag, n)}
			if best.Len() < ef || closer(cand, (*best)[0]) {
				heap.Push(frontier, cand)
				heap.Push(best, cand)
				if best.Len() > ef {
					heap.Pop(best)
				}
			}
		}
	}

	out := make([]candidate, best.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(best).(candidate)
	}
	return out
}

// topUp adds the closest unvisited nodes by exhaustive scan until want
// results exist. It only runs when the graph walk reached too few nodes.
func (ix *Index) topUp(q []float32, qmag float32, found []candidate, want int) []candidate {
	have := make(map[int32]struct{}, len(found))
	for _, c := range found {
		have[c.id] = struct{}{}
	}
	for i := range ix.entries {
		id := int32(i)
		if _, ok := have[id]; !ok {
			found = append(found, candidate{id: id, dist: ix.distance(q, qmag, id)})
		}
	}
	sort.Slice(found, func(i, j int) bool { return closer(found[i], found[j]) })
	return found[:want]
}
