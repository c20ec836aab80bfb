package models

import "time"

// Emoji is one entry of the reaction catalog. WorkspaceID is nil for the
// built-in set and points at the owning workspace for custom emojis.
type Emoji struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID *uint     `gorm:"index" json:"workspaceId,omitempty"`
	Name        string    `gorm:"not null" json:"name"`
	Shortcode   string    `gorm:"not null;index" json:"shortcode"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsCustom    bool      `gorm:"default:false" json:"isCustom"`
	CreatedByID *uint     `json:"createdById,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
