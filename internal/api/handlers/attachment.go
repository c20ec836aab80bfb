package handlers

import (
	"net/http"

	"teamchat-service/internal/adapters/storage"
	"teamchat-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxAttachmentSize = 25 << 20 // 25 MB

type AttachmentHandler struct {
	store *storage.AttachmentStore
}

func NewAttachmentHandler(store *storage.AttachmentStore) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

// Upload stores a file and returns the URL to reference from a message.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	if h.store == nil {
		response.Error(c, http.StatusServiceUnavailable, "attachment storage is not configured")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if file.Size > maxAttachmentSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "file exceeds the 25 MB limit")
		return
	}

	url, err := h.store.Upload(c.Request.Context(), file)
	if err != nil {
		response.Internal(c, "failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url, "name": file.Filename})
}
