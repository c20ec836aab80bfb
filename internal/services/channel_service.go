package services

import (
	"context"
	"errors"

	"teamchat-service/internal/models"
	"teamchat-service/internal/repositories/postgres"
	"teamchat-service/internal/websocket"

	"gorm.io/gorm"
)

var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrNotChannelMember   = errors.New("not a member of this channel")
	ErrNotWorkspaceMember = errors.New("not a member of this workspace")
)

type ChannelService struct {
	channels   *postgres.ChannelRepository
	workspaces *postgres.WorkspaceRepository
	hub        *websocket.Hub
}

func NewChannelService(
	channels *postgres.ChannelRepository,
	workspaces *postgres.WorkspaceRepository,
	hub *websocket.Hub,
) *ChannelService {
	return &ChannelService{
		channels:   channels,
		workspaces: workspaces,
		hub:        hub,
	}
}

func (s *ChannelService) Create(userID uint, req *models.CreateChannelRequest) (*models.ChannelResponse, error) {
	member, err := s.workspaces.IsMember(req.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotWorkspaceMember
	}

	channelType := req.Type
	if channelType == "" {
		channelType = models.ChannelTypeText
	}
	channel := &models.Channel{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Description: req.Description,
		Type:        channelType,
		IsPrivate:   req.IsPrivate || channelType == models.ChannelTypePrivate,
		CreatedByID: userID,
	}
	if err := s.channels.Create(channel); err != nil {
		return nil, err
	}
	resp := channel.ToResponse()
	return &resp, nil
}

func (s *ChannelService) Get(channelID, userID uint) (*models.ChannelResponse, error) {
	channel, err := s.channels.FindByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	visible, err := s.channels.CanSubscribe(context.Background(), userID, channelID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrChannelNotFound
	}
	resp := channel.ToResponse()
	return &resp, nil
}

func (s *ChannelService) ListForWorkspace(workspaceID, userID uint) ([]models.ChannelResponse, error) {
	member, err := s.workspaces.IsMember(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotWorkspaceMember
	}

	channels, err := s.channels.ListForWorkspace(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]models.ChannelResponse, 0, len(channels))
	for _, c := range channels {
		responses = append(responses, c.ToResponse())
	}
	return responses, nil
}

func (s *ChannelService) Update(channelID, userID uint, req *models.UpdateChannelRequest) (*models.ChannelResponse, error) {
	channel, err := s.channels.FindByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	member, err := s.channels.IsMember(channelID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotChannelMember
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.Description != nil {
		channel.Description = *req.Description
	}
	if req.Topic != nil {
		channel.Topic = *req.Topic
	}
	if err := s.channels.Update(channel); err != nil {
		return nil, err
	}
	resp := channel.ToResponse()
	return &resp, nil
}

// Join adds the user to a channel they are allowed to see.
func (s *ChannelService) Join(channelID, userID uint) error {
	channel, err := s.channels.FindByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChannelNotFound
		}
		return err
	}
	member, err := s.workspaces.IsMember(channel.WorkspaceID, userID)
	if err != nil {
		return err
	}
	if !member || channel.IsPrivate {
		return ErrChannelNotFound
	}

	already, err := s.channels.IsMember(channelID, userID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}
	return s.channels.AddMember(channelID, userID)
}

// Leave removes the user's own membership and evicts their live
// subscriptions from the room.
func (s *ChannelService) Leave(channelID, userID uint) error {
	if err := s.channels.RemoveMember(channelID, userID); err != nil {
		return err
	}
	s.hub.EvictUser(channelID, userID)
	return nil
}

// RemoveMember revokes another user's membership. The eviction after the
// commit is what keeps an open connection from silently retaining access.
func (s *ChannelService) RemoveMember(channelID, actorID, targetID uint) error {
	channel, err := s.channels.FindByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChannelNotFound
		}
		return err
	}
	if channel.CreatedByID != actorID {
		return ErrNotChannelMember
	}
	if err := s.channels.RemoveMember(channelID, targetID); err != nil {
		return err
	}
	s.hub.EvictUser(channelID, targetID)
	return nil
}
