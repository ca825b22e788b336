// Package similarity holds the metric kernels and the parallel top-k
// selector used to rank a collection's embeddings against a query
// vector.
package similarity

import "math"

// Metric scores a stored vector against a query vector. Lower is more
// similar for every metric, so the selector's ordering logic is
// metric-agnostic. memo is a per-query precomputed scalar; unused by
// the three metrics defined here, reserved for future ones.
type Metric func(stored, query []float32, memo float32) float32

// Euclidean returns the squared Euclidean distance between stored and
// query. The square root is intentionally not taken: it is monotonic
// with the true distance for ranking purposes and costs a sqrt per
// embedding to compute for no ordering benefit.
func Euclidean(stored, query []float32, _ float32) float32 {
	var sum float32
	for i := range stored {
		d := stored[i] - query[i]
		sum += d * d
	}
	return sum
}

// Cosine returns 1 minus the dot product of stored and query, both of
// which must already be unit L2-normalized. Insert-time normalization
// (for cosine collections) and the selector's one-time query
// normalization guarantee this precondition.
func Cosine(stored, query []float32, _ float32) float32 {
	var dot float32
	for i := range stored {
		dot += stored[i] * query[i]
	}
	return 1 - dot
}

// DotProduct returns the negated dot product of stored and query.
// Negating keeps "lower is more similar" true across all three
// metrics, which is what lets the selector share one comparator.
func DotProduct(stored, query []float32, _ float32) float32 {
	var dot float32
	for i := range stored {
		dot += stored[i] * query[i]
	}
	return -dot
}

// Normalize returns v scaled to unit L2 norm. A zero vector is
// returned unchanged rather than dividing by zero; Cosine remains
// well-defined against it because the dot product is then zero.
func Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
