package models

import "time"

// Reaction toggle outcomes
const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
)

/** --------------------ENTITIES-------------------- */
// MessageReaction is one user's single reaction of one emoji on one message.
// The composite unique index is what makes the storage-level toggle a
// conditional insert: a second insert for the same (message, user, emoji)
// conflicts instead of duplicating.
type MessageReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"not null;uniqueIndex:idx_msg_user_emoji;index" json:"messageId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_msg_user_emoji" json:"userId"`
	EmojiID   uint      `gorm:"not null;uniqueIndex:idx_msg_user_emoji" json:"emojiId"`
	CreatedAt time.Time `json:"createdAt"`

	Message Message `gorm:"foreignKey:MessageID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Emoji   Emoji   `gorm:"foreignKey:EmojiID" json:"-"`
}

/** -------------------- DTOs -------------------- */
type ToggleReactionRequest struct {
	EmojiID uint `json:"emojiId" binding:"required"`
}

// ReactionGrouping is the read-side projection of reactions on one message,
// grouped by emoji with counts and participant lists.
type ReactionGrouping struct {
	Emoji Emoji          `json:"emoji"`
	Count int            `json:"count"`
	Users []UserResponse `json:"users"`
}

// ReactionToggled is the payload of a reaction.toggled event.
type ReactionToggled struct {
	MessageID uint   `json:"messageId"`
	ChannelID uint   `json:"channelId"`
	UserID    uint   `json:"userId"`
	EmojiID   uint   `json:"emojiId"`
	Action    string `json:"action"` // "added" | "removed"
}
