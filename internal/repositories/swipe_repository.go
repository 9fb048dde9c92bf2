package repositories

import (
	"context"

	"dishdash/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SwipeRepositoryInterface interface {
	// Upsert records the latest swipe of a user on a restaurant.
	Upsert(ctx context.Context, swipe db_models.Swipe) error
	LikedRestaurantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type SwipeRepository struct {
	db *gorm.DB
}

func NewSwipeRepository(db *gorm.DB) SwipeRepositoryInterface {
	return &SwipeRepository{db: db}
}

func (s *SwipeRepository) Upsert(ctx context.Context, swipe db_models.Swipe) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "restaurant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
	}).Create(&swipe).Error
}

func (s *SwipeRepository) LikedRestaurantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&db_models.Swipe{}).
		Where("user_id = ? AND liked = ?", userID, true).
		Order("restaurant_id").
		Pluck("restaurant_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
