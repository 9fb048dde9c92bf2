package repositories

import (
	"context"

	"dishdash/internal/models/db_models"

	"gorm.io/gorm"
)

type ScoringRunRepositoryInterface interface {
	Create(ctx context.Context, run *db_models.ScoringRun) error
	Save(ctx context.Context, run *db_models.ScoringRun) error
	ListRecent(ctx context.Context, limit int) ([]db_models.ScoringRun, error)
}

type ScoringRunRepository struct {
	db *gorm.DB
}

func NewScoringRunRepository(db *gorm.DB) ScoringRunRepositoryInterface {
	return &ScoringRunRepository{db: db}
}

func (s *ScoringRunRepository) Create(ctx context.Context, run *db_models.ScoringRun) error {
	return s.db.WithContext(ctx).Create(run).Error
}

func (s *ScoringRunRepository) Save(ctx context.Context, run *db_models.ScoringRun) error {
	return s.db.WithContext(ctx).Save(run).Error
}

func (s *ScoringRunRepository) ListRecent(ctx context.Context, limit int) ([]db_models.ScoringRun, error) {
	var runs []db_models.ScoringRun
	err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
