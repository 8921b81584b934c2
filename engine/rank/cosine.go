// Package rank implements the similarity, diversity, and quality-tier
// primitives used to shape a candidate pool into a served result set.
package rank

import "math"

// Cosine returns the cosine similarity between two vectors of equal length.
// Vectors compared together must share dimensionality; a zero-norm input
// yields 0, which callers must treat as "no similarity" rather than an error.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
