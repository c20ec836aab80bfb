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

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid input data")
		return
	}

	workspace, err := h.workspaceService.Create(userID, &req)
	if err != nil {
		response.Internal(c, "failed to create workspace")
		return
	}

	c.JSON(http.StatusCreated, workspace)
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid workspace id")
		return
	}

	workspace, err := h.workspaceService.Get(uint(id), userID)
	if err != nil {
		if errors.Is(err, services.ErrWorkspaceNotFound) {
			response.NotFound(c, "workspace not found")
			return
		}
		response.Internal(c, "failed to load workspace")
		return
	}

	c.JSON(http.StatusOK, workspace)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	userID := c.GetUint("user_id")

	workspaces, err := h.workspaceService.ListForUser(userID)
	if err != nil {
		response.Internal(c, "failed to list workspaces")
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspaces": workspaces})
}

func (h *WorkspaceHandler) Join(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.JoinWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid input data")
		return
	}

	workspace, err := h.workspaceService.Join(userID, req.InviteCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInviteCode):
			response.NotFound(c, "invalid invite code")
		case errors.Is(err, services.ErrAlreadyMember):
			response.Conflict(c, "already a member of this workspace")
		default:
			response.Internal(c, "failed to join workspace")
		}
		return
	}

	c.JSON(http.StatusOK, workspace)
}
