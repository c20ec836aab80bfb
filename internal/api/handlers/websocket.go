package handlers

import (
	"teamchat-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *websocket.Hub
}

func NewWSHandler(hub *websocket.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket upgrades the request and hands the connection to the
// hub. Authentication has already run; the connection starts with no room
// subscriptions and the client subscribes over the socket itself.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetUint("user_id")
	websocket.ServeWS(h.hub, c.Writer, c.Request, userID)
}
