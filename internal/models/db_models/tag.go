package db_models

// Tag sources.
const (
	TagSourceManual = "manual"
	TagSourceVision = "vision"
	TagSourceReview = "review"
)

// Tag is interned by (Value, Category).
type Tag struct {
	BaseModel
	Value    string `gorm:"not null;uniqueIndex:idx_tags_value_category"`
	Category string `gorm:"not null;uniqueIndex:idx_tags_value_category;index"`
	Source   string `gorm:"not null;default:manual"`
}

// TagCategory is the registry of categories tags may use. New categories are
// rows, not code.
type TagCategory struct {
	BaseModel
	Name string `gorm:"unique;not null"`
}
