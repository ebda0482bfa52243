package dto

import "anoa.com/devsearch/internal/entity"

// SendMessageInput is the contact form on a profile page. Name and email are
// ignored for signed-in senders.
type SendMessageInput struct {
	Name    string `json:"name" form:"name" binding:"max=200"`
	Email   string `json:"email" form:"email" binding:"omitempty,email,max=200"`
	Subject string `json:"subject" form:"subject" binding:"max=200"`
	Body    string `json:"body" form:"body" binding:"required"`
}

type InboxResponse struct {
	Messages    []*entity.Message `json:"messages"`
	UnreadCount int64             `json:"unread_count"`
}
