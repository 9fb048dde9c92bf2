package db_models

import "gorm.io/datatypes"

// ScoringRun records one batch pass over the restaurant collection.
type ScoringRun struct {
	BaseModel
	Dimension  string `gorm:"index;not null"`
	State      string `gorm:"not null"`
	Succeeded  int
	Skipped    int
	Failed     int
	StartedAt  int64
	FinishedAt int64
	Error      string
	Failures   datatypes.JSONSlice[RunFailure]
}

// RunFailure identifies a restaurant to re-run.
type RunFailure struct {
	RestaurantID string `json:"restaurant_id"`
	Error        string `json:"error"`
}
