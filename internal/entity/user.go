package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
)

// User is the login identity. Every user is mirrored by exactly one Profile.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       *uint     `json:"role_id"`
	Role         Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Profile      *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}

type Profile struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name           string    `gorm:"size:200" json:"name"`
	Email          string    `gorm:"size:500" json:"email"`
	Username       string    `gorm:"size:200" json:"username"`
	Location       string    `gorm:"size:200" json:"location"`
	ShortIntro     string    `gorm:"size:200" json:"short_intro"`
	Bio            string    `gorm:"type:text" json:"bio"`
	ProfileImage   *string   `gorm:"type:text" json:"profile_image"`
	SocialGithub   string    `gorm:"size:200" json:"social_github"`
	SocialTwitter  string    `gorm:"size:200" json:"social_twitter"`
	SocialLinkedin string    `gorm:"size:200" json:"social_linkedin"`
	SocialYoutube  string    `gorm:"size:200" json:"social_youtube"`
	SocialWebsite  string    `gorm:"size:200" json:"social_website"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	Skills         []Skill   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"skills,omitempty"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

// Skill with an empty description is listed among "other" skills.
type Skill struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Skill) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

func (s *Skill) IsTop() bool {
	return s.Description != ""
}
