package classify

import (
	"fmt"
	"math"
)

// Cosine returns the cosine similarity of two equal-length vectors.
// Mismatched dimensions is a configuration bug (stale label embeddings after
// an embedding-model change), so it is a hard error, not a soft fallback.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine: dimension mismatch %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
