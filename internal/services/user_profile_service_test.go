package services

import (
	"context"
	"testing"
	"time"

	mem "dishdash/pkg/memcache"
	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUserVector_NoLikesIsZero(t *testing.T) {
	f := newRankingFixture(1)

	v, err := f.profiles.BuildUserVector(context.Background(), uuid.New(), "ambiance")
	require.NoError(t, err)
	assert.Equal(t, vectormath.Zero(16), v)
	assert.Equal(t, 0, f.provider.callCount())
}

func TestBuildUserVector_AveragesLikedTagsOnce(t *testing.T) {
	f := newRankingFixture(3)
	ctx := context.Background()
	a, b, disliked := f.restaurants.ids[0], f.restaurants.ids[1], f.restaurants.ids[2]
	f.tags.add(a, "ambiance", "cozy")
	f.tags.add(b, "ambiance", "cozy", "rooftop")
	f.tags.add(disliked, "ambiance", "loud")
	user := uuid.New()

	require.NoError(t, f.profiles.RecordSwipe(ctx, user, a, true))
	require.NoError(t, f.profiles.RecordSwipe(ctx, user, b, true))
	require.NoError(t, f.profiles.RecordSwipe(ctx, user, disliked, false))

	v, err := f.profiles.BuildUserVector(ctx, user, "ambiance")
	require.NoError(t, err)

	parts, err := f.provider.inner.EmbedBatch(ctx, []string{"cozy", "rooftop"})
	require.NoError(t, err)
	want, err := vectormath.Average(parts, 16)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64(want), []float64(v), 1e-12)
	assert.False(t, f.provider.sent("loud"))
}

func TestBuildUserVector_CachedUntilNextSwipe(t *testing.T) {
	f := newRankingFixture(2)
	ctx := context.Background()
	a, b := f.restaurants.ids[0], f.restaurants.ids[1]
	f.tags.add(a, "ambiance", "cozy")
	f.tags.add(b, "ambiance", "rooftop")
	user := uuid.New()

	require.NoError(t, f.profiles.RecordSwipe(ctx, user, a, true))
	first, err := f.profiles.BuildUserVector(ctx, user, "ambiance")
	require.NoError(t, err)
	_, err = f.profiles.BuildUserVector(ctx, user, "ambiance")
	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.callCount())

	require.NoError(t, f.profiles.RecordSwipe(ctx, user, b, true))
	second, err := f.profiles.BuildUserVector(ctx, user, "ambiance")
	require.NoError(t, err)
	assert.Equal(t, 2, f.provider.callCount())
	assert.NotEqual(t, first, second)
}

func TestRecordSwipe_UnknownRestaurant(t *testing.T) {
	f := newRankingFixture(1)
	err := f.profiles.RecordSwipe(context.Background(), uuid.New(), uuid.New(), true)
	assert.ErrorIs(t, err, utils.ErrRestaurantNotFound)
}

func TestBuildUserVector_ZeroTTLDisablesCache(t *testing.T) {
	f := newRankingFixture(1)
	ctx := context.Background()
	f.tags.add(f.restaurants.ids[0], "ambiance", "cozy")
	profiles := NewUserProfileService(f.swipes, f.restaurants, f.tags, f.provider, mem.NewVectorCache(), time.Duration(0))
	user := uuid.New()
	require.NoError(t, profiles.RecordSwipe(ctx, user, f.restaurants.ids[0], true))

	for i := 0; i < 2; i++ {
		_, err := profiles.BuildUserVector(ctx, user, "ambiance")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.provider.callCount())
}
