package handlers

import (
	"net/http"
	"strconv"

	"teamchat-service/internal/repositories/postgres"
	"teamchat-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type EmojiHandler struct {
	emojis *postgres.EmojiRepository
}

func NewEmojiHandler(emojis *postgres.EmojiRepository) *EmojiHandler {
	return &EmojiHandler{emojis: emojis}
}

// ListForWorkspace returns the built-in emojis plus the workspace's custom
// ones.
func (h *EmojiHandler) ListForWorkspace(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	emojis, err := h.emojis.ListForWorkspace(workspaceID)
	if err != nil {
		response.Internal(c, "failed to list emojis")
		return
	}

	c.JSON(http.StatusOK, gin.H{"emojis": emojis})
}

// Search matches emojis by name or shortcode. workspaceId is optional;
// without it only the built-in set is searched.
func (h *EmojiHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}
	workspaceID, _ := strconv.ParseUint(c.Query("workspaceId"), 10, 32)

	emojis, err := h.emojis.Search(uint(workspaceID), query, 25)
	if err != nil {
		response.Internal(c, "failed to search emojis")
		return
	}

	c.JSON(http.StatusOK, gin.H{"emojis": emojis})
}
