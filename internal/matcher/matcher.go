// Package matcher implements the 1:N nearest-neighbor match over the
// in-memory gallery of enrolled embeddings.
//
// Distance is Euclidean over L2-normalized embeddings; confidence is
// 1 - distance, clamped to [0, 1]. This mapping is fixed and documented
// here because callers compare it against the configured acceptance
// threshold (default 0.6, inclusive).
//
// The scan is linear over the full gallery per probe. That is fine for
// enrolled populations in the low thousands; larger deployments would need
// an approximate-nearest-neighbor index.
package matcher

import (
	"math"
)

// Result is the outcome of a gallery scan for one probe embedding.
type Result struct {
	// StudentID is the identity with the minimal distance to the probe.
	StudentID string
	// Distance is that identity's best-of-N minimal Euclidean distance.
	Distance float64
	// Confidence is 1 - Distance clamped to [0, 1].
	Confidence float64
	// Candidates is the number of identities that were compared.
	Candidates int
	// Ambiguous is set when two identities share the exact minimal
	// distance; an ambiguous match is rejected, never arbitrarily picked.
	Ambiguous bool
	// Found is false when the gallery had no comparable candidate or the
	// match was ambiguous.
	Found bool
}

// BestMatch scans the gallery for the identity closest to probe.
//
// For identities with multiple stored embeddings the minimum distance
// across that identity's embeddings wins (best-of-N, not average — one
// good reference angle is enough). Embeddings whose dimensionality does
// not match the probe are skipped.
func BestMatch(probe []float64, gallery map[string][][]float64) Result {
	result := Result{Distance: math.MaxFloat64}

	for studentID, embeddings := range gallery {
		best := math.MaxFloat64
		for _, emb := range embeddings {
			if len(emb) != len(probe) {
				continue
			}
			if d := euclideanDistance(probe, emb); d < best {
				best = d
			}
		}
		if best == math.MaxFloat64 {
			continue
		}

		result.Candidates++

		switch {
		case best < result.Distance:
			result.StudentID = studentID
			result.Distance = best
			result.Ambiguous = false
		case best == result.Distance:
			// Degenerate case: two identities at the exact minimal
			// distance. Reject instead of relying on map iteration order.
			result.Ambiguous = true
		}
	}

	if result.Candidates == 0 || result.Ambiguous {
		return Result{Candidates: result.Candidates, Ambiguous: result.Ambiguous}
	}

	result.Found = true
	result.Confidence = DistanceToConfidence(result.Distance)
	return result
}

// DistanceToConfidence maps a Euclidean distance to the confidence score
// compared against the acceptance threshold. Monotonically decreasing in
// distance, clamped to [0, 1].
func DistanceToConfidence(distance float64) float64 {
	confidence := 1 - distance
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// Normalize returns a unit-length copy of the embedding. Stored and probe
// embeddings are normalized before comparison so the distance range, and
// therefore the confidence mapping, stays stable across encoder backends.
func Normalize(embedding []float64) []float64 {
	if len(embedding) == 0 {
		return embedding
	}

	var norm float64
	for _, v := range embedding {
		norm += v * v
	}

	if norm == 0 {
		return embedding
	}

	norm = math.Sqrt(norm)
	normalized := make([]float64, len(embedding))
	for i, v := range embedding {
		normalized[i] = v / norm
	}

	return normalized
}

// euclideanDistance calculates the Euclidean distance between two equal
// length embeddings. Lower distance means more similar faces.
func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
