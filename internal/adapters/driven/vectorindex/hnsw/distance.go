package hnsw

import (
	"github.com/viant/vec/search"
)

// cosineDistance returns 1 - cos(a, b) using precomputed magnitudes.
// A zero vector is at distance 1 from everything.
// Vectors must have equal length; the index checks dimensions up front.
func cosineDistance(a, b []float32, magA, magB float32) float32 {
	if magA == 0 || magB == 0 {
		return 1
	}
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return 1 - float32(float64(dot)/(float64(magA)*float64(magB)))
}

func magnitudeOf(v []float32) float32 {
	return search.Float32s(v).Magnitude()
}
