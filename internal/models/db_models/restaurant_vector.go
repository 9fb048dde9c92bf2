package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// RestaurantVector is the averaged embedding of a restaurant's tags in one
// category, written by the scoring batch and read by similarity ranking.
type RestaurantVector struct {
	RestaurantID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Category     string          `gorm:"primaryKey"`
	Model        string          `gorm:"not null"`
	TagValues    pq.StringArray  `gorm:"type:text[]"`
	Embedding    pgvector.Vector `gorm:"type:vector"`
	UpdatedAt    int64           `gorm:"autoUpdateTime"`
}
