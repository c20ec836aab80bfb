package postgres

import (
	"context"
	"time"

	"teamchat-service/internal/models"

	"gorm.io/gorm"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db}
}

// Create persists the channel and its creator membership in one
// transaction.
func (r *ChannelRepository) Create(channel *models.Channel) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(channel).Error; err != nil {
			return err
		}
		member := &models.ChannelMember{
			ChannelID: channel.ID,
			UserID:    channel.CreatedByID,
			CanPost:   true,
		}
		return tx.Create(member).Error
	})
}

func (r *ChannelRepository) FindByID(id uint) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.First(&channel, "id = ?", id).Error
	return &channel, err
}

// ListForWorkspace returns the channels a user can see: every public
// channel of the workspace plus the private ones they belong to.
func (r *ChannelRepository) ListForWorkspace(workspaceID, userID uint) ([]*models.Channel, error) {
	var channels []*models.Channel
	err := r.db.
		Where("workspace_id = ? AND is_private = false", workspaceID).
		Or("workspace_id = ? AND id IN (?)", workspaceID,
			r.db.Model(&models.ChannelMember{}).Select("channel_id").Where("user_id = ?", userID)).
		Order("name").
		Find(&channels).Error
	return channels, err
}

func (r *ChannelRepository) Update(channel *models.Channel) error {
	return r.db.Save(channel).Error
}

func (r *ChannelRepository) AddMember(channelID, userID uint) error {
	member := &models.ChannelMember{
		ChannelID: channelID,
		UserID:    userID,
		CanPost:   true,
	}
	return r.db.Create(member).Error
}

func (r *ChannelRepository) RemoveMember(channelID, userID uint) error {
	return r.db.
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Delete(&models.ChannelMember{}).Error
}

func (r *ChannelRepository) IsMember(channelID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&count).Error
	return count > 0, err
}

// CanSubscribe implements the hub's membership check: a channel-member row
// exists, or the channel is public and the user belongs to its workspace.
// Called on every subscribe request, never cached.
func (r *ChannelRepository) CanSubscribe(ctx context.Context, userID, channelID uint) (bool, error) {
	db := r.db.WithContext(ctx)

	var count int64
	err := db.Model(&models.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	var channel models.Channel
	if err := db.First(&channel, "id = ?", channelID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	if channel.IsPrivate {
		return false, nil
	}

	err = db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", channel.WorkspaceID, userID).
		Count(&count).Error
	return count > 0, err
}

// CanPost reports whether the user may write to the channel.
func (r *ChannelRepository) CanPost(channelID, userID uint) (bool, error) {
	var member models.ChannelMember
	err := r.db.First(&member, "channel_id = ? AND user_id = ?", channelID, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return member.CanPost, nil
}

func (r *ChannelRepository) TouchLastMessage(channelID uint, at time.Time) error {
	return r.db.Model(&models.Channel{}).
		Where("id = ?", channelID).
		Update("last_message_at", at).Error
}

func (r *ChannelRepository) UpdateLastRead(channelID, userID uint, at time.Time) error {
	return r.db.Model(&models.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Update("last_read_at", at).Error
}
