package domain

import "math"

// CosineSimilarity returns dot(a,b) / (|a|*|b|) in [-1, 1]. Mismatched
// dimensions, nil vectors, or a zero-magnitude vector score 0 rather than
// erroring, so a single malformed embedding cannot fail a whole query.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
