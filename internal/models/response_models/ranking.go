package response_models

type RankedRestaurantResponse struct {
	RestaurantID string  `json:"restaurant_id"`
	Score        float64 `json:"score"`
	Rank         int     `json:"rank"`
}

type ScoringRunResponse struct {
	ID         string            `json:"id"`
	Dimension  string            `json:"dimension"`
	State      string            `json:"state"`
	Succeeded  int               `json:"succeeded"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
	StartedAt  int64             `json:"started_at"`
	FinishedAt int64             `json:"finished_at,omitempty"`
	Error      string            `json:"error,omitempty"`
	Failures   []RunFailureEntry `json:"failures,omitempty"`
}

type RunFailureEntry struct {
	RestaurantID string `json:"restaurant_id"`
	Error        string `json:"error"`
}
