package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"teamchat-service/internal/models"
	"teamchat-service/internal/services"
	"teamchat-service/internal/websocket"
	"teamchat-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
	hub         *websocket.Hub
}

func NewUserHandler(userService *services.UserService, hub *websocket.Hub) *UserHandler {
	return &UserHandler{userService: userService, hub: hub}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.userService.GetProfile(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid input data")
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		response.Internal(c, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}

	users, err := h.userService.Search(query)
	if err != nil {
		response.Internal(c, "search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SetStatus sets the caller's presence explicitly. The same operation is
// reachable over an open WebSocket; the REST form exists for clients that
// change status without a live connection.
func (h *UserHandler) SetStatus(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status must be one of online, away, busy")
		return
	}

	if err := h.hub.SetPresence(c.Request.Context(), userID, models.UserStatus(req.Status)); err != nil {
		if errors.Is(err, websocket.ErrInvalidStatus) {
			response.BadRequest(c, "status must be one of online, away, busy")
			return
		}
		response.Internal(c, "failed to set status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
