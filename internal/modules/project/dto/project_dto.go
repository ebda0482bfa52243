package dto

import (
	"anoa.com/devsearch/internal/entity"
	commonDto "anoa.com/devsearch/pkg/dto"
)

type ProjectInput struct {
	Title         string   `json:"title" form:"title" binding:"required,max=200"`
	Description   string   `json:"description" form:"description"`
	DemoLink      string   `json:"demo_link" form:"demo_link" binding:"omitempty,url,max=2000"`
	SourceLink    string   `json:"source_link" form:"source_link" binding:"omitempty,url,max=2000"`
	Tags          []string `json:"tags" form:"tags" binding:"omitempty,dive,uuid"`
	NewTags       string   `json:"new_tags" form:"new_tags"`
	AttachmentIDs []uint   `json:"attachment_ids" form:"attachment_ids"`
}

type ReviewInput struct {
	Value string `json:"value" form:"value" binding:"required,vote"`
	Body  string `json:"body" form:"body"`
}

type ProjectListResponse struct {
	Data        []*entity.Project        `json:"data"`
	Meta        commonDto.PaginationMeta `json:"meta"`
	SearchQuery string                   `json:"search_query"`
}
