package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// Project listings sort by ProjectOrder.
type Project struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       *uuid.UUID   `gorm:"type:uuid;index" json:"owner_id"`
	Owner         *Profile     `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"owner,omitempty"`
	Title         string       `gorm:"size:200;not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description"`
	FeaturedImage *string      `gorm:"type:text" json:"featured_image"`
	DemoLink      string       `gorm:"size:2000" json:"demo_link"`
	SourceLink    string       `gorm:"size:2000" json:"source_link"`
	Tags          []Tag        `gorm:"many2many:project_tags;constraint:OnDelete:CASCADE" json:"tags"`
	VoteTotal     int          `gorm:"default:0;not null" json:"vote_total"`
	VoteRatio     int          `gorm:"default:0;not null" json:"vote_ratio"`
	Reviews       []Review     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	Attachments   []Attachment `gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL" json:"attachments,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

const ProjectOrder = "vote_ratio DESC, vote_total DESC, title ASC"

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

const (
	VoteUp   = "up"
	VoteDown = "down"
)

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_owner_project" json:"owner_id"`
	Owner     *Profile  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_owner_project" json:"project_id"`
	Body      string    `gorm:"type:text" json:"body"`
	Value     string    `gorm:"size:10;not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// Attachment is an uploaded file. Until ProjectID is set it is an orphan.
type Attachment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OwnerID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"owner_id"`
	Owner     *Profile   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	ProjectID *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	FileURL   string     `gorm:"type:text;not null" json:"file_url"`
	FileType  string     `gorm:"size:100" json:"file_type"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
