package services

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"

	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	"github.com/google/uuid"
)

type RankedItem struct {
	RestaurantID uuid.UUID
	Score        float64
}

// WeightedSum computes Σ weight*score over the weight names. A name with no
// score contributes 0. The result only orders restaurants relative to each
// other.
func WeightedSum(weights map[string]float64, scores map[string]float64) float64 {
	var total float64
	// fixed summation order keeps results bit-identical across calls
	for _, name := range slices.Sorted(maps.Keys(weights)) {
		total += weights[name] * scores[name]
	}
	return total
}

// SimilarityScore is the affinity of a user vector to a restaurant vector, in [0, 1].
func SimilarityScore(user, restaurant vectormath.Vector) (float64, error) {
	return vectormath.NormalizedAffinity(user, restaurant)
}

// ValidateWeights requires every weight to be a finite number in [0, maxWeight].
func ValidateWeights(weights map[string]float64, maxWeight float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: no weights given", utils.ErrInvalidWeights)
	}
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 || w > maxWeight {
			return fmt.Errorf("%w: %s=%v is outside [0, %v]", utils.ErrInvalidWeights, name, w, maxWeight)
		}
	}
	return nil
}

// RankStable orders items by descending score. Equal scores keep their input order.
func RankStable(items []RankedItem) []RankedItem {
	out := slices.Clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
