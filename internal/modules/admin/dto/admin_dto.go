package dto

import (
	"anoa.com/devsearch/internal/entity"
	commonDto "anoa.com/devsearch/pkg/dto"
)

type UserFilter struct {
	Page string `form:"page"`
}

type UserListResponse struct {
	Data []*entity.User          `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
