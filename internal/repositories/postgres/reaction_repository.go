package postgres

import (
	"context"

	"teamchat-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) *ReactionRepository {
	return &ReactionRepository{db}
}

// Toggle flips one user's reaction of one emoji on one message and reports
// which way it went. The conditional insert against the composite unique
// index is the compare-and-swap: of two racing toggles, exactly one insert
// lands and the other observes the conflict, so the at-most-one-row
// invariant holds without a read-then-write window.
func (r *ReactionRepository) Toggle(ctx context.Context, messageID, userID, emojiID uint) (string, error) {
	db := r.db.WithContext(ctx)

	reaction := &models.MessageReaction{
		MessageID: messageID,
		UserID:    userID,
		EmojiID:   emojiID,
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(reaction)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return models.ReactionAdded, nil
	}

	res = db.Where("message_id = ? AND user_id = ? AND emoji_id = ?", messageID, userID, emojiID).
		Delete(&models.MessageReaction{})
	if res.Error != nil {
		return "", res.Error
	}
	return models.ReactionRemoved, nil
}

// Exists reports whether the reaction row is currently live.
func (r *ReactionRepository) Exists(ctx context.Context, messageID, userID, emojiID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessageReaction{}).
		Where("message_id = ? AND user_id = ? AND emoji_id = ?", messageID, userID, emojiID).
		Count(&count).Error
	return count > 0, err
}
