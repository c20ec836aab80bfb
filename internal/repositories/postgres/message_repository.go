package postgres

import (
	"teamchat-service/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("User").First(&message, "id = ? AND is_deleted = false", id).Error
	return &message, err
}

// ListByChannel returns one page of channel history, newest first.
func (r *MessageRepository) ListByChannel(channelID uint, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.Preload("User").
		Where("channel_id = ? AND is_deleted = false", channelID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) SoftDelete(id uint) error {
	return r.db.Model(&models.Message{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// ListReactions loads every reaction row for the given messages with emoji
// and user preloaded, for the read-side grouping projection.
func (r *MessageRepository) ListReactions(messageIDs []uint) ([]*models.MessageReaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var reactions []*models.MessageReaction
	err := r.db.Preload("Emoji").Preload("User").
		Where("message_id IN ?", messageIDs).
		Order("created_at").
		Find(&reactions).Error
	return reactions, err
}
