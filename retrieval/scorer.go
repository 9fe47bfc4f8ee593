package retrieval

import (
	"math"
	"time"
)

// DefaultDecayRate is the per-day exponential decay applied to older chunks.
const DefaultDecayRate = 0.1

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RecencyDecay returns exp(-rate × daysSinceEvent), or 1.0 when no event
// time is recorded.
func RecencyDecay(eventAt *time.Time, now time.Time, rate float64) float64 {
	if eventAt == nil {
		return 1.0
	}
	days := now.Sub(*eventAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-rate * days)
}
