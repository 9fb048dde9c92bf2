package response_models

type TagResponse struct {
	ID       string `json:"id"`
	Value    string `json:"value"`
	Category string `json:"category"`
	Source   string `json:"source"`
}
