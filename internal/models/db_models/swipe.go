package db_models

import "github.com/google/uuid"

type Swipe struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_swipes_user_restaurant"`
	RestaurantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_swipes_user_restaurant"`
	Liked        bool
}
