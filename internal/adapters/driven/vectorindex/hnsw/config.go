// Package hnsw implements an approximate nearest-neighbour index as a
// hierarchical navigable small world graph.
//
// Every node lives on layer 0 and, with geometrically decreasing
// probability, on higher layers. Search descends greedily from the top
// layer to layer 1, then runs a best-first search of width ef on layer 0.
// Construction costs roughly O(n log n * M * EfConstruction) distance
// evaluations; a query costs roughly O(log n * ef * M). Raising EfSearch
// improves recall at the cost of latency.
//
// Distances are cosine distances (1 - cosine similarity), both while
// building and while searching. Reported scores are cosine similarities.
package hnsw

import "math"

// Config holds the graph parameters.
type Config struct {
	// M is the number of neighbours kept per node on layers above 0.
	M int
	// MaxM0 is the number of neighbours kept per node on layer 0.
	MaxM0 int
	// EfConstruction is the candidate list size used while inserting.
	EfConstruction int
	// EfSearch is the candidate list size used while querying.
	// The effective value is max(EfSearch, k).
	EfSearch int
	// Seed drives level assignment, making builds reproducible.
	Seed int64
}

// DefaultConfig returns M=16, MaxM0=32, EfConstruction=200, EfSearch=64.
func DefaultConfig() Config {
	return Config{
		M:              16,
		MaxM0:          32,
		EfConstruction: 200,
		EfSearch:       64,
		Seed:           42,
	}
}

// withDefaults replaces out-of-range values with defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.M < 2 {
		c.M = d.M
	}
	if c.MaxM0 < c.M {
		c.MaxM0 = 2 * c.M
	}
	if c.EfConstruction <= 0 {
		c.EfConstruction = d.EfConstruction
	}
	if c.EfSearch <= 0 {
		c.EfSearch = d.EfSearch
	}
	return c
}

// levelMultiplier is 1/ln(M).
func (c Config) levelMultiplier() float64 {
	return 1 / math.Log(float64(c.M))
}

func (c Config) maxConnections(layer int) int {
	if layer == 0 {
		return c.MaxM0
	}
	return c.M
}
