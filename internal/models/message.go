package models

import (
	"time"

	"gorm.io/gorm"
)

// Message type constants
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

/** --------------------ENTITIES-------------------- */
// Message represents one message posted to a channel
type Message struct {
	gorm.Model
	ChannelID uint   `gorm:"not null;index" json:"channelId"`
	UserID    uint   `gorm:"not null;index" json:"userId"`
	Content   string `gorm:"not null" json:"content"`
	Type      string `gorm:"not null;type:varchar(20);default:'text'" json:"type"`

	// AttachmentURL points at the object uploaded to blob storage, if any.
	AttachmentURL  *string `json:"attachmentUrl,omitempty"`
	AttachmentName *string `json:"attachmentName,omitempty"`

	ThreadID  *uint      `gorm:"index" json:"threadId,omitempty"` // parent message for thread replies
	EditedAt  *time.Time `json:"editedAt,omitempty"`
	IsDeleted bool       `gorm:"default:false" json:"-"`

	Channel Channel `gorm:"foreignKey:ChannelID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
}

/** -------------------- DTOs -------------------- */
type CreateMessageRequest struct {
	ChannelID      uint    `json:"channelId" binding:"required"`
	Content        string  `json:"content" binding:"required"`
	Type           string  `json:"type" binding:"omitempty,oneof=text image file system"`
	ThreadID       *uint   `json:"threadId,omitempty"`
	AttachmentURL  *string `json:"attachmentUrl,omitempty"`
	AttachmentName *string `json:"attachmentName,omitempty"`
}

type MessageResponse struct {
	ID             uint               `json:"id"`
	ChannelID      uint               `json:"channelId"`
	User           UserResponse       `json:"user"`
	Content        string             `json:"content"`
	Type           string             `json:"type"`
	AttachmentURL  *string            `json:"attachmentUrl,omitempty"`
	AttachmentName *string            `json:"attachmentName,omitempty"`
	ThreadID       *uint              `json:"threadId,omitempty"`
	EditedAt       *time.Time         `json:"editedAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	Reactions      []ReactionGrouping `json:"reactions"`
}

type MessageHistoryResponse struct {
	Messages []MessageResponse `json:"messages"`
	HasMore  bool              `json:"hasMore"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ChannelID:      m.ChannelID,
		User:           m.User.ToResponse(),
		Content:        m.Content,
		Type:           m.Type,
		AttachmentURL:  m.AttachmentURL,
		AttachmentName: m.AttachmentName,
		ThreadID:       m.ThreadID,
		EditedAt:       m.EditedAt,
		CreatedAt:      m.CreatedAt,
		Reactions:      []ReactionGrouping{},
	}
}
