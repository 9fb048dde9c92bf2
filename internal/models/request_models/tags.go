package request_models

type ListTagsRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// ImageTagRequest is one item of the image classifier output.
type ImageTagRequest struct {
	Value    string `json:"value" binding:"required,max=100"`
	Category string `json:"category" binding:"required,max=50"`
}
