package dto

import "io"

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
	CustomRange []int `json:"custom_range"`
}

type ListFilter struct {
	SearchQuery string `form:"search_query"`
	Page        string `form:"page"`
}

// UploadFile carries an optional multipart file through the service layer.
type UploadFile struct {
	Reader   io.Reader
	FileName string
}

type MessageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}
