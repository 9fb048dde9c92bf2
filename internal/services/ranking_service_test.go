package services

import (
	"context"
	"testing"
	"time"

	"dishdash/internal/config"
	"dishdash/internal/models/db_models"
	"dishdash/internal/models/response_models"
	mem "dishdash/pkg/memcache"
	"dishdash/pkg/utils"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rankingConfig = config.RankingConfig{
	MaxWeight: 100,
	Weights: map[string]string{
		"ambiance":    "ambianceScore",
		"foodQuality": "foodQualityScore",
	},
	UserVectorTTL: time.Minute,
}

type rankingFixture struct {
	restaurants *fakeRestaurants
	tags        *fakeTags
	vectors     *fakeVectors
	swipes      *fakeSwipes
	provider    *countingProvider
	profiles    UserProfileServiceInterface
	service     RankingServiceInterface
}

func newRankingFixture(n int) *rankingFixture {
	f := &rankingFixture{
		restaurants: newFakeRestaurants(n),
		tags:        newFakeTags("ambiance"),
		vectors:     newFakeVectors(),
		swipes:      newFakeSwipes(),
		provider:    newCountingProvider(16),
	}
	f.profiles = NewUserProfileService(f.swipes, f.restaurants, f.tags, f.provider, mem.NewVectorCache(), time.Minute)
	f.service = NewRankingService(f.restaurants, f.vectors, f.profiles, f.provider.Name(), rankingConfig)
	return f
}

func rankedIDs(resp []response_models.RankedRestaurantResponse) []string {
	out := make([]string, len(resp))
	for i, r := range resp {
		out[i] = r.RestaurantID
	}
	return out
}

func TestRankByPreferences(t *testing.T) {
	f := newRankingFixture(3)
	a, b, c := f.restaurants.ids[0], f.restaurants.ids[1], f.restaurants.ids[2]
	f.restaurants.setScore(a, "ambianceScore", 0.8)
	f.restaurants.setScore(a, "foodQualityScore", 0.2)
	f.restaurants.setScore(b, "ambianceScore", 0.8)
	f.restaurants.setScore(c, "ambianceScore", 0.9)
	f.restaurants.setScore(c, "foodQualityScore", 0.9)

	weights := map[string]float64{"ambiance": 70, "foodQuality": 30}
	got, err := f.service.RankByPreferences(context.Background(), weights, []uuid.UUID{a, b, c})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []string{c.String(), a.String(), b.String()}, rankedIDs(got))
	assert.InDelta(t, 90, got[0].Score, 1e-9)
	assert.InDelta(t, 62, got[1].Score, 1e-9)
	assert.InDelta(t, 56, got[2].Score, 1e-9)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
}

func TestRankByPreferences_UnscoredAndUnknownDimensionsDoNotFail(t *testing.T) {
	f := newRankingFixture(2)
	a, b := f.restaurants.ids[0], f.restaurants.ids[1]

	got, err := f.service.RankByPreferences(context.Background(),
		map[string]float64{"ambiance": 10, "parking": 50}, []uuid.UUID{b, a, b})
	require.NoError(t, err)

	assert.Equal(t, []string{b.String(), a.String()}, rankedIDs(got), "ties keep request order, duplicates dropped")
	assert.Equal(t, 0.0, got[0].Score)
}

func TestRankByPreferences_Errors(t *testing.T) {
	f := newRankingFixture(1)
	ctx := context.Background()

	_, err := f.service.RankByPreferences(ctx, map[string]float64{"ambiance": 101}, f.restaurants.ids)
	assert.ErrorIs(t, err, utils.ErrInvalidWeights)

	_, err = f.service.RankByPreferences(ctx, map[string]float64{"ambiance": 1}, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, utils.ErrRestaurantNotFound)

	_, err = f.service.RankByPreferences(ctx, map[string]float64{"ambiance": 1}, nil)
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestRankBySimilarity(t *testing.T) {
	f := newRankingFixture(3)
	ctx := context.Background()
	liked, match, other := f.restaurants.ids[0], f.restaurants.ids[1], f.restaurants.ids[2]
	user := uuid.New()

	f.tags.add(liked, "ambiance", "candlelit", "quiet")
	require.NoError(t, f.profiles.RecordSwipe(ctx, user, liked, true))

	userVector, err := f.profiles.BuildUserVector(ctx, user, "ambiance")
	require.NoError(t, err)
	require.NoError(t, f.vectors.Upsert(ctx, db_models.RestaurantVector{
		RestaurantID: match, Category: "ambiance", Model: f.provider.Name(),
		Embedding: pgvector.NewVector(userVector.Float32()),
	}))

	got, err := f.service.RankBySimilarity(ctx, user, "ambiance", []uuid.UUID{other, match})
	require.NoError(t, err)

	assert.Equal(t, []string{match.String(), other.String()}, rankedIDs(got))
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.Equal(t, 0.0, got[1].Score, "no stored vector, no affinity")
}

func TestRankBySimilarity_RejectsVectorsFromAnotherModel(t *testing.T) {
	f := newRankingFixture(1)
	ctx := context.Background()
	id := f.restaurants.ids[0]
	require.NoError(t, f.vectors.Upsert(ctx, db_models.RestaurantVector{
		RestaurantID: id, Category: "ambiance", Model: "openai:text-embedding-3-small:1536",
		Embedding: pgvector.NewVector(make([]float32, 16)),
	}))

	_, err := f.service.RankBySimilarity(ctx, uuid.New(), "ambiance", []uuid.UUID{id})
	assert.ErrorIs(t, err, utils.ErrDimensionMismatch)
}
