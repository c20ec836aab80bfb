package models

import (
	"time"

	"gorm.io/gorm"
)

// UserStatus is the presence status persisted on the user row.
type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusAway    UserStatus = "away"
	UserStatusBusy    UserStatus = "busy"
	UserStatusOffline UserStatus = "offline"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusOnline, UserStatusAway, UserStatusBusy, UserStatusOffline:
		return true
	}
	return false
}

/** --------------------ENTITIES-------------------- */
// User represents the user entity
type User struct {
	gorm.Model
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `gorm:"not null" json:"displayName"`
	Password    string `json:"-"` // bcrypt hash, never serialized
	// Avatar is optional and stores a profile picture URL.
	Avatar        string     `json:"avatar,omitempty"`
	Status        UserStatus `gorm:"type:varchar(20);default:'offline'" json:"status"`
	StatusMessage string     `json:"statusMessage,omitempty"`
	LastActiveAt  *time.Time `json:"lastActiveAt,omitempty"`

	Workspaces []*Workspace `gorm:"many2many:workspace_members" json:"-"`
	Channels   []*Channel   `gorm:"many2many:channel_members" json:"-"`
}

/** -------------------- DTOs -------------------- */
// Request
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required,min=3,max=50"`
	DisplayName string `json:"displayName" binding:"required,max=100"`
	Password    string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the request for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName   *string `json:"displayName,omitempty"`
	Avatar        *string `json:"avatar,omitempty"`
	StatusMessage *string `json:"statusMessage,omitempty"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=online away busy"`
}

// Response
type UserResponse struct {
	ID           uint       `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"displayName"`
	Avatar       string     `json:"avatar,omitempty"`
	Status       UserStatus `json:"status"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// LoginResponse represents the response for a successful login
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		Avatar:       u.Avatar,
		Status:       u.Status,
		LastActiveAt: u.LastActiveAt,
		CreatedAt:    u.CreatedAt,
	}
}
