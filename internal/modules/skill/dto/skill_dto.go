package dto

type SkillInput struct {
	Name        string `json:"name" form:"name" binding:"required,max=200"`
	Description string `json:"description" form:"description"`
}
