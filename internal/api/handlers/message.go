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

type MessageHandler struct {
	messageService  *services.MessageService
	reactionService *services.ReactionService
}

func NewMessageHandler(messageService *services.MessageService, reactionService *services.ReactionService) *MessageHandler {
	return &MessageHandler{messageService: messageService, reactionService: reactionService}
}

// Create persists the message and fans it out to the channel's live
// subscribers in one call. A 201 here means the message is durable; the
// broadcast carries the same payload the response body does.
func (h *MessageHandler) Create(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid input data")
		return
	}

	message, err := h.messageService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrCannotPost) {
			response.Forbidden(c, "cannot post to this channel")
			return
		}
		response.Internal(c, "failed to create message")
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *MessageHandler) History(c *gin.Context) {
	userID := c.GetUint("user_id")
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	history, err := h.messageService.History(channelID, userID, limit, offset)
	if err != nil {
		if errors.Is(err, services.ErrNotChannelMember) {
			response.Forbidden(c, "not a member of this channel")
			return
		}
		response.Internal(c, "failed to load messages")
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := c.GetUint("user_id")
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.MarkRead(channelID, userID); err != nil {
		response.Internal(c, "failed to mark channel read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userID := c.GetUint("user_id")
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.Delete(messageID, userID); err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			response.NotFound(c, "message not found")
			return
		}
		response.Internal(c, "failed to delete message")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ToggleReaction flips the caller's reaction on a message. Toggling twice
// lands back where it started; the response reports which way this call
// went.
func (h *MessageHandler) ToggleReaction(c *gin.Context) {
	userID := c.GetUint("user_id")
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.ToggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid input data")
		return
	}

	action, err := h.reactionService.Toggle(c.Request.Context(), messageID, userID, req.EmojiID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMessageNotFound):
			response.NotFound(c, "message not found")
		case errors.Is(err, services.ErrNotChannelMember):
			response.Forbidden(c, "not a member of this channel")
		default:
			response.Internal(c, "failed to toggle reaction")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"action": action})
}
