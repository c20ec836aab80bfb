package models

import (
	"time"

	"gorm.io/gorm"
)

// Channel type constants
const (
	ChannelTypeText    = "text"
	ChannelTypeVoice   = "voice"
	ChannelTypePrivate = "private"
)

/** --------------------ENTITIES-------------------- */
// Channel represents a channel within a workspace
type Channel struct {
	gorm.Model
	WorkspaceID uint   `gorm:"not null;index" json:"workspaceId"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `gorm:"not null;type:varchar(20);check:type IN ('text', 'voice', 'private')" json:"type"`
	IsPrivate   bool   `gorm:"default:false" json:"isPrivate"`
	Topic       string `json:"topic,omitempty"`
	CreatedByID uint   `gorm:"not null" json:"createdById"`

	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"-"`
	Members   []*User   `gorm:"many2many:channel_members" json:"-"`
}

// ChannelMember is the membership row between users and channels
type ChannelMember struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ChannelID  uint       `gorm:"not null;uniqueIndex:idx_channel_user" json:"channelId"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_channel_user" json:"userId"`
	CanPost    bool       `gorm:"default:true" json:"canPost"`
	JoinedAt   time.Time  `gorm:"autoCreateTime" json:"joinedAt"`
	LastReadAt *time.Time `json:"lastReadAt,omitempty"`
}

/** -------------------- DTOs -------------------- */
type CreateChannelRequest struct {
	WorkspaceID uint   `json:"workspaceId" binding:"required"`
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"omitempty,oneof=text voice private"`
	IsPrivate   bool   `json:"isPrivate"`
}

type UpdateChannelRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Topic       *string `json:"topic,omitempty"`
}

type ChannelResponse struct {
	ID            uint       `json:"id"`
	WorkspaceID   uint       `json:"workspaceId"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Type          string     `json:"type"`
	IsPrivate     bool       `json:"isPrivate"`
	Topic         string     `json:"topic,omitempty"`
	CreatedByID   uint       `json:"createdById"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (c *Channel) ToResponse() ChannelResponse {
	return ChannelResponse{
		ID:            c.ID,
		WorkspaceID:   c.WorkspaceID,
		Name:          c.Name,
		Description:   c.Description,
		Type:          c.Type,
		IsPrivate:     c.IsPrivate,
		Topic:         c.Topic,
		CreatedByID:   c.CreatedByID,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
}
