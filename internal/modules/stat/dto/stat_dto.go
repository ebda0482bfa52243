package dto

import "anoa.com/devsearch/internal/entity"

type StatsResponse struct {
	TotalDevelopers int64             `json:"total_developers"`
	TotalProjects   int64             `json:"total_projects"`
	TopProjects     []*entity.Project `json:"top_projects"`
}
