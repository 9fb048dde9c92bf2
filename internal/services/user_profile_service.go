package services

import (
	"context"
	"fmt"
	"time"

	"dishdash/internal/models/db_models"
	"dishdash/internal/repositories"
	"dishdash/pkg/embedding"
	mem "dishdash/pkg/memcache"
	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	"github.com/google/uuid"
)

type UserProfileServiceInterface interface {
	RecordSwipe(ctx context.Context, userID, restaurantID uuid.UUID, liked bool) error
	// BuildUserVector averages the embeddings of the category tags found on
	// restaurants the user liked. No likes or no tags yields the zero vector.
	BuildUserVector(ctx context.Context, userID uuid.UUID, category string) (vectormath.Vector, error)
}

type UserProfileService struct {
	swipeRepo      repositories.SwipeRepositoryInterface
	restaurantRepo repositories.RestaurantRepositoryInterface
	tagRepo        repositories.TagRepositoryInterface
	provider       embedding.Provider
	cache          mem.VectorStore
	ttl            time.Duration
}

func NewUserProfileService(
	swipeRepo repositories.SwipeRepositoryInterface,
	restaurantRepo repositories.RestaurantRepositoryInterface,
	tagRepo repositories.TagRepositoryInterface,
	provider embedding.Provider,
	cache mem.VectorStore,
	ttl time.Duration,
) UserProfileServiceInterface {
	return &UserProfileService{
		swipeRepo:      swipeRepo,
		restaurantRepo: restaurantRepo,
		tagRepo:        tagRepo,
		provider:       provider,
		cache:          cache,
		ttl:            ttl,
	}
}

func cacheKey(userID uuid.UUID, category string) string {
	return userID.String() + "/" + category
}

func (s *UserProfileService) RecordSwipe(ctx context.Context, userID, restaurantID uuid.UUID, liked bool) error {
	exists, err := s.restaurantRepo.Exists(ctx, restaurantID)
	if err != nil {
		return fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", utils.ErrRestaurantNotFound, restaurantID)
	}

	err = s.swipeRepo.Upsert(ctx, db_models.Swipe{UserID: userID, RestaurantID: restaurantID, Liked: liked})
	if err != nil {
		return fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}

	s.cache.DeletePrefix(userID.String() + "/")
	return nil
}

func (s *UserProfileService) BuildUserVector(ctx context.Context, userID uuid.UUID, category string) (vectormath.Vector, error) {
	key := cacheKey(userID, category)
	if v, ok := s.cache.Peek(key); ok {
		return v, nil
	}

	liked, err := s.swipeRepo.LikedRestaurantIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}

	tags, err := s.tagRepo.AggregateTags(ctx, liked, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}

	vector := vectormath.Zero(s.provider.Dimension())
	if len(tags) > 0 {
		values := make([]string, len(tags))
		for i, tag := range tags {
			values[i] = tag.Value
		}
		vectors, err := s.provider.EmbedBatch(ctx, values)
		if err != nil {
			return nil, err
		}
		if vector, err = vectormath.Average(vectors, s.provider.Dimension()); err != nil {
			return nil, err
		}
	}

	s.cache.Set(key, vector, s.ttl)
	return vector, nil
}
