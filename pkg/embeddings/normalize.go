// Package embeddings holds provider-independent helpers for embedding vectors: the pgvector
// literal codec, L2 normalization, and the error classes every provider maps its failures to.
package embeddings

import (
	"math"
)

// NormalizeL2 scales vector in place to unit length. Cosine distance on unit vectors is stable
// across providers that do not normalize their own output. A zero vector is left as is.
func NormalizeL2(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}

	if sumSquares == 0 {
		return
	}

	magnitude := math.Sqrt(sumSquares)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / magnitude)
	}
}
