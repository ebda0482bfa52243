package dto

import "encoding/json"

type SearchQuery struct {
	Q     string `form:"q"`
	Index string `form:"index"`
	Limit int64  `form:"limit"`
}

type SearchResult struct {
	Index              string          `json:"index"`
	Query              string          `json:"query"`
	Hits               json.RawMessage `json:"hits"`
	EstimatedTotalHits int64           `json:"estimated_total_hits"`
}

type ReindexResult struct {
	Projects int `json:"projects"`
	Profiles int `json:"profiles"`
}

type ProjectDocument struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	OwnerID       string   `json:"owner_id"`
	OwnerName     string   `json:"owner_name"`
	FeaturedImage string   `json:"featured_image"`
	Tags          []string `json:"tags"`
	VoteTotal     int      `json:"vote_total"`
	VoteRatio     int      `json:"vote_ratio"`
	CreatedAt     int64    `json:"created_at"`
}

type ProfileDocument struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Username     string   `json:"username"`
	ShortIntro   string   `json:"short_intro"`
	Bio          string   `json:"bio"`
	Location     string   `json:"location"`
	ProfileImage string   `json:"profile_image"`
	Skills       []string `json:"skills"`
}
