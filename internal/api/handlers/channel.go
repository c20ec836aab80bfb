package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"teamchat-service/internal/models"
	"teamchat-service/internal/services"
	"teamchat-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type ChannelHandler struct {
	channelService *services.ChannelService
}

func NewChannelHandler(channelService *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

func (h *ChannelHandler) Create(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid input data")
		return
	}

	channel, err := h.channelService.Create(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrNotWorkspaceMember) {
			response.Forbidden(c, "not a member of this workspace")
			return
		}
		response.Internal(c, "failed to create channel")
		return
	}

	c.JSON(http.StatusCreated, channel)
}

func (h *ChannelHandler) Get(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	channel, err := h.channelService.Get(id, userID)
	if err != nil {
		if errors.Is(err, services.ErrChannelNotFound) {
			response.NotFound(c, "channel not found")
			return
		}
		response.Internal(c, "failed to load channel")
		return
	}

	c.JSON(http.StatusOK, channel)
}

func (h *ChannelHandler) ListForWorkspace(c *gin.Context) {
	userID := c.GetUint("user_id")
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	channels, err := h.channelService.ListForWorkspace(workspaceID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotWorkspaceMember) {
			response.Forbidden(c, "not a member of this workspace")
			return
		}
		response.Internal(c, "failed to list channels")
		return
	}

	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *ChannelHandler) Update(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid input data")
		return
	}

	channel, err := h.channelService.Update(id, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChannelNotFound):
			response.NotFound(c, "channel not found")
		case errors.Is(err, services.ErrNotChannelMember):
			response.Forbidden(c, "not a member of this channel")
		default:
			response.Internal(c, "failed to update channel")
		}
		return
	}

	c.JSON(http.StatusOK, channel)
}

func (h *ChannelHandler) Join(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.channelService.Join(id, userID); err != nil {
		if errors.Is(err, services.ErrChannelNotFound) {
			response.NotFound(c, "channel not found")
			return
		}
		response.Internal(c, "failed to join channel")
		return
	}

	c.JSON(http.StatusOK, gin.H{"joined": true})
}

func (h *ChannelHandler) Leave(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.channelService.Leave(id, userID); err != nil {
		response.Internal(c, "failed to leave channel")
		return
	}

	c.JSON(http.StatusOK, gin.H{"left": true})
}

// RemoveMember revokes a member's access; their live subscriptions to the
// channel are evicted as part of the same call.
func (h *ChannelHandler) RemoveMember(c *gin.Context) {
	actorID := c.GetUint("user_id")
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.channelService.RemoveMember(channelID, actorID, uint(targetID)); err != nil {
		switch {
		case errors.Is(err, services.ErrChannelNotFound):
			response.NotFound(c, "channel not found")
		case errors.Is(err, services.ErrNotChannelMember):
			response.Forbidden(c, "only the channel creator can remove members")
		default:
			response.Internal(c, "failed to remove member")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// pathID parses a uint path parameter, replying 400 itself on failure.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
