package services

import (
	"context"
	"fmt"

	"dishdash/pkg/embedding"
	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	"github.com/google/uuid"
)

// Evaluation is the outcome of scoring one restaurant in one category.
type Evaluation struct {
	// Score is the affinity to the ideal vector, in [0, 1].
	Score float64
	// Vector is the average of the tag embeddings, before any comparison.
	// It is the zero vector when the restaurant has no tags.
	Vector    vectormath.Vector
	TagValues []string
}

// RestaurantScorer is what the batch runner needs from a scorer.
type RestaurantScorer interface {
	ComputeIdealVector(ctx context.Context, referenceTags []string) (vectormath.Vector, error)
	Evaluate(ctx context.Context, restaurantID uuid.UUID, category string, ideal vectormath.Vector) (Evaluation, error)
	// Model names the embedding space vectors are produced in.
	Model() string
}

// AmbianceScorer rates restaurants by how close their tags in a category sit
// to an ideal reference profile. Despite the name it serves any dimension.
type AmbianceScorer struct {
	tags     TagAggregatorInterface
	provider embedding.Provider
}

func NewAmbianceScorer(tags TagAggregatorInterface, provider embedding.Provider) *AmbianceScorer {
	return &AmbianceScorer{tags: tags, provider: provider}
}

func (s *AmbianceScorer) Model() string { return s.provider.Name() }

// ComputeIdealVector embeds the reference tags and averages them. It is meant
// to run once per batch.
func (s *AmbianceScorer) ComputeIdealVector(ctx context.Context, referenceTags []string) (vectormath.Vector, error) {
	if len(referenceTags) == 0 {
		return nil, fmt.Errorf("%w: reference tags are empty", utils.ErrInvalidInput)
	}

	vectors, err := s.provider.EmbedBatch(ctx, referenceTags)
	if err != nil {
		return nil, fmt.Errorf("embed reference tags: %w", err)
	}
	return vectormath.Average(vectors, s.provider.Dimension())
}

func (s *AmbianceScorer) ScoreRestaurant(ctx context.Context, restaurantID uuid.UUID, category string, ideal vectormath.Vector) (float64, error) {
	ev, err := s.Evaluate(ctx, restaurantID, category, ideal)
	if err != nil {
		return 0, err
	}
	return ev.Score, nil
}

func (s *AmbianceScorer) Evaluate(ctx context.Context, restaurantID uuid.UUID, category string, ideal vectormath.Vector) (Evaluation, error) {
	tags, err := s.tags.AggregateTags(ctx, restaurantID, category)
	if err != nil {
		return Evaluation{}, err
	}

	// no tags, no signal: nothing is sent to the provider
	if len(tags) == 0 {
		return Evaluation{Score: 0, Vector: vectormath.Zero(s.provider.Dimension())}, nil
	}

	values := make([]string, len(tags))
	for i, tag := range tags {
		values[i] = tag.Value
	}

	vectors, err := s.provider.EmbedBatch(ctx, values)
	if err != nil {
		return Evaluation{}, err
	}

	avg, err := vectormath.Average(vectors, s.provider.Dimension())
	if err != nil {
		return Evaluation{}, err
	}

	score, err := vectormath.NormalizedAffinity(avg, ideal)
	if err != nil {
		return Evaluation{}, err
	}

	return Evaluation{Score: score, Vector: avg, TagValues: values}, nil
}
