package postgres

import (
	"context"
	"time"

	"teamchat-service/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	return &user, err
}

func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) SearchByUsername(query string, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.Where("username ILIKE ? OR display_name ILIKE ?", "%"+query+"%", "%"+query+"%").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// PersistStatus mirrors a presence transition onto the user row, so that
// profile and member-list queries report the status the fan-out announced.
func (r *UserRepository) PersistStatus(ctx context.Context, userID uint, status models.UserStatus, lastActive time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"status":         status,
			"last_active_at": lastActive,
		}).Error
}
