package services

import (
	"errors"
	"strings"

	"teamchat-service/internal/models"
	"teamchat-service/internal/repositories/postgres"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrAlreadyMember     = errors.New("already a member")
)

type WorkspaceService struct {
	workspaces *postgres.WorkspaceRepository
}

func NewWorkspaceService(workspaces *postgres.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{workspaces: workspaces}
}

func (s *WorkspaceService) Create(ownerID uint, req *models.CreateWorkspaceRequest) (*models.WorkspaceResponse, error) {
	workspace := &models.Workspace{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		OwnerID:     ownerID,
		InviteCode:  strings.ReplaceAll(uuid.New().String(), "-", "")[:16],
	}
	if err := s.workspaces.Create(workspace); err != nil {
		return nil, err
	}
	resp := workspace.ToResponse()
	return &resp, nil
}

func (s *WorkspaceService) Get(workspaceID, userID uint) (*models.WorkspaceResponse, error) {
	member, err := s.workspaces.IsMember(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrWorkspaceNotFound
	}
	workspace, err := s.workspaces.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	resp := workspace.ToResponse()
	return &resp, nil
}

func (s *WorkspaceService) ListForUser(userID uint) ([]models.WorkspaceResponse, error) {
	workspaces, err := s.workspaces.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	responses := make([]models.WorkspaceResponse, 0, len(workspaces))
	for _, w := range workspaces {
		responses = append(responses, w.ToResponse())
	}
	return responses, nil
}

// Join adds the user to the workspace matching the invite code.
func (s *WorkspaceService) Join(userID uint, inviteCode string) (*models.WorkspaceResponse, error) {
	workspace, err := s.workspaces.FindByInviteCode(inviteCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, err
	}

	member, err := s.workspaces.IsMember(workspace.ID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, ErrAlreadyMember
	}

	if err := s.workspaces.AddMember(workspace.ID, userID, models.WorkspaceRoleMember); err != nil {
		return nil, err
	}
	resp := workspace.ToResponse()
	return &resp, nil
}
