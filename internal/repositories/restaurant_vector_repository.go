package repositories

import (
	"context"

	"dishdash/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RestaurantVectorRepositoryInterface interface {
	Upsert(ctx context.Context, vector db_models.RestaurantVector) error
	Delete(ctx context.Context, restaurantID uuid.UUID, category string) error
	GetByRestaurants(ctx context.Context, restaurantIDs []uuid.UUID, category string) ([]db_models.RestaurantVector, error)
}

type RestaurantVectorRepository struct {
	db *gorm.DB
}

func NewRestaurantVectorRepository(db *gorm.DB) RestaurantVectorRepositoryInterface {
	return &RestaurantVectorRepository{db: db}
}

func (r *RestaurantVectorRepository) Upsert(ctx context.Context, vector db_models.RestaurantVector) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"model", "tag_values", "embedding", "updated_at"}),
	}).Create(&vector).Error
}

func (r *RestaurantVectorRepository) Delete(ctx context.Context, restaurantID uuid.UUID, category string) error {
	return r.db.WithContext(ctx).
		Where("restaurant_id = ? AND category = ?", restaurantID, category).
		Delete(&db_models.RestaurantVector{}).Error
}

func (r *RestaurantVectorRepository) GetByRestaurants(ctx context.Context, restaurantIDs []uuid.UUID, category string) ([]db_models.RestaurantVector, error) {
	var vectors []db_models.RestaurantVector
	if len(restaurantIDs) == 0 {
		return vectors, nil
	}
	err := r.db.WithContext(ctx).
		Where("restaurant_id IN ? AND category = ?", restaurantIDs, category).
		Find(&vectors).Error
	if err != nil {
		return nil, err
	}
	return vectors, nil
}
