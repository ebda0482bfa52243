package dto

type CreateTagInput struct {
	Name string `json:"name" form:"name" binding:"required,max=200"`
}

type TagFilter struct {
	Search string `form:"search"`
}
