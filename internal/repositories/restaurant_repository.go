package repositories

import (
	"context"
	"fmt"

	"dishdash/internal/models/db_models"
	"dishdash/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestaurantRepositoryInterface interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ImageExists(ctx context.Context, imageID uuid.UUID) (bool, error)
	// ListPage returns up to limit restaurant ids ordered by id, strictly after
	// the given id. Pass uuid.Nil for the first page.
	ListPage(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Restaurant, error)
	// UpdateScore writes a single score column and nothing else.
	UpdateScore(ctx context.Context, id uuid.UUID, scoreField string, value float64) error
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepositoryInterface {
	return &RestaurantRepository{db: db}
}

type RestaurantRepository struct {
	db *gorm.DB
}

func (r *RestaurantRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db_models.Restaurant{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *RestaurantRepository) ImageExists(ctx context.Context, imageID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db_models.RestaurantImage{}).Where("id = ?", imageID).Count(&count).Error
	return count > 0, err
}

func (r *RestaurantRepository) ListPage(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&db_models.Restaurant{}).
		Where("id > ?", after).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *RestaurantRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Restaurant, error) {
	var restaurants []db_models.Restaurant
	if len(ids) == 0 {
		return restaurants, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (r *RestaurantRepository) UpdateScore(ctx context.Context, id uuid.UUID, scoreField string, value float64) error {
	column, ok := db_models.ScoreFields[scoreField]
	if !ok {
		return fmt.Errorf("%w: %s", utils.ErrUnknownScoreField, scoreField)
	}

	res := r.db.WithContext(ctx).
		Model(&db_models.Restaurant{}).
		Where("id = ?", id).
		UpdateColumn(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", utils.ErrRestaurantNotFound, id)
	}
	return nil
}
