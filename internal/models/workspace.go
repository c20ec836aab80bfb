package models

import (
	"time"

	"gorm.io/gorm"
)

// Workspace member roles
const (
	WorkspaceRoleOwner  = "owner"
	WorkspaceRoleAdmin  = "admin"
	WorkspaceRoleMember = "member"
)

/** --------------------ENTITIES-------------------- */
// Workspace groups channels and members under one team
type Workspace struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	OwnerID     uint   `gorm:"not null" json:"ownerId"`
	InviteCode  string `gorm:"uniqueIndex" json:"inviteCode,omitempty"`
	IsPublic    bool   `gorm:"default:false" json:"isPublic"`

	Owner    User       `gorm:"foreignKey:OwnerID" json:"-"`
	Channels []*Channel `json:"-"`
}

// WorkspaceMember is the membership row between users and workspaces
type WorkspaceMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID uint      `gorm:"not null;uniqueIndex:idx_workspace_user" json:"workspaceId"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_workspace_user" json:"userId"`
	Role        string    `gorm:"type:varchar(20);default:'member'" json:"role"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}

/** -------------------- DTOs -------------------- */
type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"required,max=50"`
	Description string `json:"description"`
}

type JoinWorkspaceRequest struct {
	InviteCode string `json:"inviteCode" binding:"required"`
}

type WorkspaceResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	OwnerID     uint      `json:"ownerId"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (w *Workspace) ToResponse() WorkspaceResponse {
	return WorkspaceResponse{
		ID:          w.ID,
		Name:        w.Name,
		Slug:        w.Slug,
		Description: w.Description,
		Icon:        w.Icon,
		OwnerID:     w.OwnerID,
		IsPublic:    w.IsPublic,
		CreatedAt:   w.CreatedAt,
	}
}
