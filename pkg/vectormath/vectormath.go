// Package vectormath holds the similarity arithmetic used by scoring and ranking.
// A zero vector is treated as "no signal": its cosine similarity with anything is 0.
package vectormath

import (
	"fmt"
	"math"

	"dishdash/pkg/utils"

	"gonum.org/v1/gonum/floats"
)

type Vector []float64

// Zero returns a zero vector of length dim.
func Zero(dim int) Vector {
	if dim < 0 {
		dim = 0
	}
	return make(Vector, dim)
}

func FromFloat32(v []float32) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func (v Vector) Float32() []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// IsZero reports whether v has zero norm. An empty vector is zero.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Average returns the element-wise mean of vectors. With no input it returns
// Zero(dim). Every vector must have length dim.
func Average(vectors []Vector, dim int) (Vector, error) {
	if len(vectors) == 0 {
		return Zero(dim), nil
	}

	sum := Zero(dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has length %d, want %d", utils.ErrDimensionMismatch, i, len(v), dim)
		}
		floats.Add(sum, v)
	}
	if len(vectors) > 1 {
		floats.Scale(1/float64(len(vectors)), sum)
	}
	return sum, nil
}

// CosineSimilarity returns dot(a,b)/(|a||b|) in [-1, 1]. It returns exactly 0
// when either vector has zero norm.
func CosineSimilarity(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", utils.ErrDimensionMismatch, len(a), len(b))
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := floats.Dot(a, b) / (normA * normB)
	if math.IsNaN(sim) {
		return 0, nil
	}
	// rounding can push identical vectors slightly past 1
	return math.Max(-1, math.Min(1, sim)), nil
}

// Affinity maps a raw similarity in [-1, 1] onto [0, 1].
func Affinity(similarity float64) float64 {
	return math.Max(0, math.Min(1, (similarity+1)/2))
}

// NormalizedAffinity is Affinity(CosineSimilarity(a, b)), except that a zero
// vector on either side yields 0 rather than the 0.5 midpoint: no tags means
// no affinity, matching the score stored for untagged restaurants.
func NormalizedAffinity(a, b Vector) (float64, error) {
	sim, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}
	if a.IsZero() || b.IsZero() {
		return 0, nil
	}
	return Affinity(sim), nil
}
