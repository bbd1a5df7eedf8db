package matcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(dim, axis int) []float64 {
	v := make([]float64, dim)
	v[axis] = 1
	return v
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name          string
		probe         []float64
		gallery       map[string][][]float64
		wantFound     bool
		wantStudent   string
		wantAmbiguous bool
	}{
		{
			name:      "empty gallery",
			probe:     unit(4, 0),
			gallery:   map[string][][]float64{},
			wantFound: false,
		},
		{
			name:  "single identity exact match",
			probe: unit(4, 0),
			gallery: map[string][][]float64{
				"s1": {unit(4, 0)},
			},
			wantFound:   true,
			wantStudent: "s1",
		},
		{
			name:  "closest of several identities wins",
			probe: []float64{1, 0, 0, 0},
			gallery: map[string][][]float64{
				"s1": {unit(4, 1)},
				"s2": {Normalize([]float64{0.9, 0.1, 0, 0})},
				"s3": {unit(4, 2)},
			},
			wantFound:   true,
			wantStudent: "s2",
		},
		{
			name:  "best of N per identity, not average",
			probe: unit(4, 0),
			gallery: map[string][][]float64{
				// s1 has one terrible angle and one perfect one.
				"s1": {unit(4, 3), unit(4, 0)},
				"s2": {Normalize([]float64{0.8, 0.2, 0, 0})},
			},
			wantFound:   true,
			wantStudent: "s1",
		},
		{
			name:  "identical minimal distance is ambiguous",
			probe: unit(4, 0),
			gallery: map[string][][]float64{
				"s1": {unit(4, 1)},
				"s2": {unit(4, 1)},
			},
			wantFound:     false,
			wantAmbiguous: true,
		},
		{
			name:  "mismatched dimensionality is skipped",
			probe: unit(4, 0),
			gallery: map[string][][]float64{
				"s1": {unit(8, 0)},
			},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BestMatch(tt.probe, tt.gallery)

			assert.Equal(t, tt.wantFound, result.Found)
			assert.Equal(t, tt.wantAmbiguous, result.Ambiguous)
			if tt.wantFound {
				assert.Equal(t, tt.wantStudent, result.StudentID)
				assert.GreaterOrEqual(t, result.Confidence, 0.0)
				assert.LessOrEqual(t, result.Confidence, 1.0)
			}
		})
	}
}

func TestBestMatchDeterministic(t *testing.T) {
	probe := Normalize([]float64{0.5, 0.5, 0, 0})
	gallery := map[string][][]float64{
		"s1": {unit(4, 0)},
		"s2": {unit(4, 1)},
		"s3": {unit(4, 2)},
		"s4": {unit(4, 3)},
	}

	first := BestMatch(probe, gallery)
	require.True(t, first.Found)

	// Map iteration order varies; the result must not.
	for i := 0; i < 50; i++ {
		result := BestMatch(probe, gallery)
		assert.Equal(t, first.StudentID, result.StudentID)
		assert.Equal(t, first.Distance, result.Distance)
		assert.Equal(t, first.Confidence, result.Confidence)
	}
}

func TestDistanceToConfidence(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{name: "identical embeddings", distance: 0, want: 1},
		{name: "threshold default distance", distance: 0.4, want: 0.6},
		{name: "opposite corner", distance: 2, want: 0},
		{name: "negative clamp", distance: 3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceToConfidence(tt.distance), 1e-9)
		})
	}

	// Monotonically decreasing over the useful range.
	prev := DistanceToConfidence(0)
	for d := 0.05; d <= 2.0; d += 0.05 {
		c := DistanceToConfidence(d)
		assert.LessOrEqual(t, c, prev)
		prev = c
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float64{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-9)
	assert.InDelta(t, 0.8, v[1], 1e-9)

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	// Zero vector and empty input pass through unchanged.
	assert.Equal(t, []float64{0, 0}, Normalize([]float64{0, 0}))
	assert.Empty(t, Normalize(nil))
}
