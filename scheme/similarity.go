package scheme

import (
	"math"

	"github.com/poiesic/agrivoice/core"
)

// CosineSimilarity returns dot(a, b) / (|a| * |b|).
// Vectors of different length or with zero magnitude score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Argmax scans the corpus linearly and returns the index and score of the
// row most similar to query. Only a strictly greater score replaces the
// current best, so the first of several equal scores wins.
func Argmax(corpus *core.Corpus, query []float32) (int, float32) {
	best := 0
	bestScore := CosineSimilarity(query, corpus.Embedding(0))
	for i := 1; i < corpus.Len(); i++ {
		score := CosineSimilarity(query, corpus.Embedding(i))
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best, bestScore
}
