package request_models

// RankRequest ranks restaurants by named preference weights, e.g.
// {"weights": {"ambiance": 70, "foodQuality": 30}, "restaurantIds": [...]}.
type RankRequest struct {
	Weights       map[string]float64 `json:"weights" binding:"required,min=1"`
	RestaurantIDs []string           `json:"restaurantIds" binding:"required,min=1,max=500,dive,uuid"`
}

type SwipeRequest struct {
	Liked *bool `json:"liked" binding:"required"`
}

type TriggerScoringRequest struct {
	Dimension string `json:"dimension"`
}
