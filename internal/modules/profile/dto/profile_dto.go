package dto

import (
	"anoa.com/devsearch/internal/entity"
	commonDto "anoa.com/devsearch/pkg/dto"
)

// UpdateProfileInput replaces every editable profile field, like submitting the account form.
type UpdateProfileInput struct {
	Name           string `json:"name" form:"name" binding:"max=200"`
	Email          string `json:"email" form:"email" binding:"required,email,max=500"`
	Username       string `json:"username" form:"username" binding:"required,username"`
	Location       string `json:"location" form:"location" binding:"max=200"`
	ShortIntro     string `json:"short_intro" form:"short_intro" binding:"max=200"`
	Bio            string `json:"bio" form:"bio"`
	SocialGithub   string `json:"social_github" form:"social_github" binding:"omitempty,url,max=200"`
	SocialTwitter  string `json:"social_twitter" form:"social_twitter" binding:"omitempty,url,max=200"`
	SocialLinkedin string `json:"social_linkedin" form:"social_linkedin" binding:"omitempty,url,max=200"`
	SocialYoutube  string `json:"social_youtube" form:"social_youtube" binding:"omitempty,url,max=200"`
	SocialWebsite  string `json:"social_website" form:"social_website" binding:"omitempty,url,max=200"`
}

type ProfileListResponse struct {
	Data        []*entity.Profile        `json:"data"`
	Meta        commonDto.PaginationMeta `json:"meta"`
	SearchQuery string                   `json:"search_query"`
}

// ProfileDetailResponse splits skills the way the public profile page shows them.
type ProfileDetailResponse struct {
	Profile     *entity.Profile   `json:"profile"`
	TopSkills   []entity.Skill    `json:"top_skills"`
	OtherSkills []entity.Skill    `json:"other_skills"`
	Projects    []*entity.Project `json:"projects"`
}

type AccountResponse struct {
	Profile  *entity.Profile   `json:"profile"`
	Skills   []entity.Skill    `json:"skills"`
	Projects []*entity.Project `json:"projects"`
}
