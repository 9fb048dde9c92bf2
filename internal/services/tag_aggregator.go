package services

import (
	"context"
	"fmt"

	"dishdash/internal/models/db_models"
	"dishdash/internal/repositories"
	"dishdash/pkg/utils"

	"github.com/google/uuid"
)

// TagAggregatorInterface is the read-only tag source used by scoring.
type TagAggregatorInterface interface {
	// AggregateTags returns every tag of category attached to the restaurant,
	// its images or its reviews, each tag once. An existing restaurant with no
	// such tags yields an empty slice and no error.
	AggregateTags(ctx context.Context, restaurantID uuid.UUID, category string) ([]db_models.Tag, error)
}

type TagAggregator struct {
	tagRepo        repositories.TagRepositoryInterface
	restaurantRepo repositories.RestaurantRepositoryInterface
}

func NewTagAggregator(tagRepo repositories.TagRepositoryInterface, restaurantRepo repositories.RestaurantRepositoryInterface) TagAggregatorInterface {
	return &TagAggregator{
		tagRepo:        tagRepo,
		restaurantRepo: restaurantRepo,
	}
}

func (a *TagAggregator) AggregateTags(ctx context.Context, restaurantID uuid.UUID, category string) ([]db_models.Tag, error) {
	exists, err := a.restaurantRepo.Exists(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", utils.ErrRestaurantNotFound, restaurantID)
	}

	tags, err := a.tagRepo.AggregateTags(ctx, []uuid.UUID{restaurantID}, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}
	return tags, nil
}
