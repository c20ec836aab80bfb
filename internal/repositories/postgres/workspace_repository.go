package postgres

import (
	"teamchat-service/internal/models"

	"gorm.io/gorm"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db}
}

// Create persists the workspace and its owner membership in one
// transaction.
func (r *WorkspaceRepository) Create(workspace *models.Workspace) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		member := &models.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      workspace.OwnerID,
			Role:        models.WorkspaceRoleOwner,
		}
		return tx.Create(member).Error
	})
}

func (r *WorkspaceRepository) FindByID(id uint) (*models.Workspace, error) {
	var workspace models.Workspace
	err := r.db.First(&workspace, "id = ?", id).Error
	return &workspace, err
}

func (r *WorkspaceRepository) FindByInviteCode(code string) (*models.Workspace, error) {
	var workspace models.Workspace
	err := r.db.First(&workspace, "invite_code = ?", code).Error
	return &workspace, err
}

func (r *WorkspaceRepository) ListForUser(userID uint) ([]*models.Workspace, error) {
	var workspaces []*models.Workspace
	err := r.db.
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Find(&workspaces).Error
	return workspaces, err
}

func (r *WorkspaceRepository) AddMember(workspaceID, userID uint, role string) error {
	member := &models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
	return r.db.Create(member).Error
}

func (r *WorkspaceRepository) IsMember(workspaceID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&count).Error
	return count > 0, err
}
