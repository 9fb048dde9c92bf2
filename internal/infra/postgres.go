package infra

import (
	"fmt"
	"os"
	"time"

	"dishdash/internal/models/db_models"
	"dishdash/pkg/logging"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitPostgresql opens the pool. An empty url falls back to POSTGRES_URL.
func InitPostgresql(url string) (*gorm.DB, error) {
	dsn := url
	if dsn == "" {
		dsn = os.Getenv("POSTGRES_URL")
	}
	if dsn == "" {
		return nil, fmt.Errorf("database url is empty: set database.url or POSTGRES_URL")
	}

	connectionPool, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := connectionPool.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return connectionPool, nil
}

// Migrate creates the pgvector extension and the tables used by the service.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	return db.AutoMigrate(
		&db_models.TagCategory{},
		&db_models.Tag{},
		&db_models.Restaurant{},
		&db_models.RestaurantImage{},
		&db_models.Review{},
		&db_models.Swipe{},
		&db_models.RestaurantVector{},
		&db_models.ScoringRun{},
	)
}

func ClosePostgresql(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logging.Error().Err(err).Msg("error getting database instance")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logging.Error().Err(err).Msg("error closing database connection")
	} else {
		logging.Info().Msg("PostgreSQL database connection closed successfully")
	}
}
