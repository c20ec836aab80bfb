package postgres

import (
	"teamchat-service/internal/models"

	"gorm.io/gorm"
)

type EmojiRepository struct {
	db *gorm.DB
}

func NewEmojiRepository(db *gorm.DB) *EmojiRepository {
	return &EmojiRepository{db}
}

func (r *EmojiRepository) FindByID(id uint) (*models.Emoji, error) {
	var emoji models.Emoji
	err := r.db.First(&emoji, "id = ?", id).Error
	return &emoji, err
}

// ListForWorkspace returns the built-in catalog plus the workspace's
// custom emojis.
// Search matches emojis by name or shortcode across the built-in set and
// the workspace's custom emojis.
func (r *EmojiRepository) Search(workspaceID uint, query string, limit int) ([]*models.Emoji, error) {
	var emojis []*models.Emoji
	pattern := "%" + query + "%"
	err := r.db.
		Where("workspace_id IS NULL OR workspace_id = ?", workspaceID).
		Where("name ILIKE ? OR shortcode ILIKE ?", pattern, pattern).
		Order("shortcode ASC").
		Limit(limit).
		Find(&emojis).Error
	return emojis, err
}

func (r *EmojiRepository) ListForWorkspace(workspaceID uint) ([]*models.Emoji, error) {
	var emojis []*models.Emoji
	err := r.db.
		Where("workspace_id IS NULL OR workspace_id = ?", workspaceID).
		Order("shortcode").
		Find(&emojis).Error
	return emojis, err
}
