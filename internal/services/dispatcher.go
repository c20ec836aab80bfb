package services

import (
	"context"

	"teamchat-service/internal/websocket"
)

// Dispatcher is the fan-out surface the write path depends on. The hub
// satisfies it; tests substitute a recorder.
type Dispatcher interface {
	Dispatch(ctx context.Context, channelID uint, kind websocket.EventKind, payload any)
}
