package db_models

import "github.com/google/uuid"

type Restaurant struct {
	BaseModel
	Name       string `gorm:"not null"`
	Address    string
	Latitude   float64
	Longitude  float64
	PriceLevel int

	// Scores are nil until the first scoring run; each run overwrites them.
	AmbianceScore    *float64
	FoodQualityScore *float64
	ServiceScore     *float64
	ValueScore       *float64

	Tags    []Tag `gorm:"many2many:restaurant_tags"`
	Images  []RestaurantImage
	Reviews []Review
}

// ScoreFields maps the score field names used by configuration and the API to
// their columns. The score sink refuses anything not listed here.
var ScoreFields = map[string]string{
	"ambianceScore":    "ambiance_score",
	"foodQualityScore": "food_quality_score",
	"serviceScore":     "service_score",
	"valueScore":       "value_score",
}

// Scores returns the computed scores keyed by score field name. Fields that
// were never computed are absent.
func (r *Restaurant) Scores() map[string]float64 {
	out := make(map[string]float64, len(ScoreFields))
	for field, v := range map[string]*float64{
		"ambianceScore":    r.AmbianceScore,
		"foodQualityScore": r.FoodQualityScore,
		"serviceScore":     r.ServiceScore,
		"valueScore":       r.ValueScore,
	} {
		if v != nil {
			out[field] = *v
		}
	}
	return out
}

type RestaurantImage struct {
	BaseModel
	RestaurantID uuid.UUID `gorm:"type:uuid;index;not null"`
	URL          string
	Tags         []Tag `gorm:"many2many:restaurant_image_tags"`
}

type Review struct {
	BaseModel
	RestaurantID uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID       uuid.UUID `gorm:"type:uuid;index"`
	Rating       int       `gorm:"check:rating >= 1 AND rating <= 5"`
	Body         string    `gorm:"type:text"`
	Tags         []Tag     `gorm:"many2many:review_tags"`
}
