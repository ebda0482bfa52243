package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is an inbox entry. A nil SenderID means the sender was anonymous.
type Message struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID    *uuid.UUID `gorm:"type:uuid;index" json:"sender_id"`
	Sender      *Profile   `gorm:"foreignKey:SenderID;constraint:OnDelete:SET NULL" json:"-"`
	RecipientID uuid.UUID  `gorm:"type:uuid;index;not null" json:"recipient_id"`
	Recipient   *Profile   `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string     `gorm:"size:200" json:"name"`
	Email       string     `gorm:"size:200" json:"email"`
	Subject     string     `gorm:"size:200" json:"subject"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	IsRead      bool       `gorm:"default:false;not null" json:"is_read"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

const MessageOrder = "is_read ASC, created_at DESC"

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
