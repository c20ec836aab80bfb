package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"teamchat-service/internal/models"
)

const (
	defaultQueueSize     = 256
	defaultPresenceGrace = 30 * time.Second
)

// Options tunes a hub. Zero values fall back to the defaults above; Sink,
// StatusStore and StatusWriter are optional collaborators.
type Options struct {
	// QueueSize bounds every connection's outbound queue.
	QueueSize int
	// PresenceGrace is the reconnect window before a user goes offline.
	PresenceGrace time.Duration
	// Sink receives a copy of every dispatched event.
	Sink EventSink
	// StatusStore persists sticky presence across reconnects.
	StatusStore StatusStore
	// StatusWriter mirrors presence transitions to durable user rows.
	StatusWriter StatusWriter
}

// Hub is the fan-out engine: it owns the connection registry, the room
// index and per-room event ordering. One instance is constructed
// explicitly in main and handed to the request-handling layer; the hub
// itself never writes to the database except through the collaborators it
// was built with.
type Hub struct {
	mu          sync.RWMutex
	clients     map[string]*Client          // connection registry, by connection ID
	userClients map[uint]map[string]*Client // user ID -> live connections
	rooms       map[uint]*room              // room index, by channel ID

	resolver  MembershipResolver
	presence  *PresenceTracker
	sink      EventSink
	queueSize int
}

func NewHub(resolver MembershipResolver, opts Options) *Hub {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.PresenceGrace <= 0 {
		opts.PresenceGrace = defaultPresenceGrace
	}

	h := &Hub{
		clients:     make(map[string]*Client),
		userClients: make(map[uint]map[string]*Client),
		rooms:       make(map[uint]*room),
		resolver:    resolver,
		sink:        opts.Sink,
		queueSize:   opts.QueueSize,
	}
	h.presence = NewPresenceTracker(opts.PresenceGrace, opts.StatusStore, opts.StatusWriter, h.publishPresence)
	return h
}

// Presence exposes the tracker for the request-handling layer (REST status
// endpoint shares the same state machine as the websocket frame).
func (h *Hub) Presence() *PresenceTracker {
	return h.presence
}

// Close drops every connection and stops pending presence timers.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
	h.presence.Stop()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	if h.userClients[c.userID] == nil {
		h.userClients[c.userID] = make(map[string]*Client)
	}
	h.userClients[c.userID][c.id] = c
	h.mu.Unlock()

	h.presence.ConnectionOpened(context.Background(), c.userID)
	slog.Debug("connection registered", "clientID", c.id, "userID", c.userID)
}

// unregister removes a connection from the registry and from every room it
// subscribed to. Idempotent: heartbeat timeouts, write failures and
// explicit closes may all race into it.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	if conns := h.userClients[c.userID]; conns != nil {
		delete(conns, c.id)
		if len(conns) == 0 {
			delete(h.userClients, c.userID)
		}
	}

	// Snapshot the union of rooms this user occupied before the maps are
	// pruned; the offline presence event fans out to these rooms after
	// the grace window, when no live subscription remains to consult.
	roomSnapshot := h.userRoomsLocked(c.userID)
	for id := range c.rooms {
		roomSnapshot = appendUniq(roomSnapshot, id)
		if r, ok := h.rooms[id]; ok && r.remove(c.id) {
			delete(h.rooms, id)
		}
	}
	h.mu.Unlock()

	c.close()
	h.presence.ConnectionClosed(context.Background(), c.userID, roomSnapshot)
	slog.Debug("connection unregistered", "clientID", c.id, "userID", c.userID)
}

// Subscribe authorizes and registers a room subscription. The membership
// check hits storage on every call; an open connection must not retain
// access to a channel it was removed from.
func (h *Hub) Subscribe(ctx context.Context, c *Client, channelID uint) error {
	ok, err := h.resolver.CanSubscribe(ctx, c.userID, channelID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAMember
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, live := h.clients[c.id]; !live {
		return ErrClientDisconnected
	}
	r, ok := h.rooms[channelID]
	if !ok {
		r = newRoom()
		h.rooms[channelID] = r
	}
	r.add(c)
	c.rooms[channelID] = struct{}{}
	return nil
}

func (h *Hub) Unsubscribe(c *Client, channelID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(c.rooms, channelID)
	if r, ok := h.rooms[channelID]; ok && r.remove(c.id) {
		delete(h.rooms, channelID)
	}
}

// EvictUser removes every connection of a user from one room. The
// request-handling layer calls it after revoking channel membership, so an
// open connection does not keep receiving traffic for a channel it was
// removed from.
func (h *Hub) EvictUser(channelID, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.userClients[userID] {
		if _, subscribed := c.rooms[channelID]; !subscribed {
			continue
		}
		delete(c.rooms, channelID)
		if r, ok := h.rooms[channelID]; ok && r.remove(c.id) {
			delete(h.rooms, channelID)
		}
	}
}

// Dispatch stamps the event with the room's next sequence number and
// broadcasts it. Dispatching to a room nobody subscribed to is a no-op.
// Callers must have committed the underlying write before dispatching.
func (h *Hub) Dispatch(ctx context.Context, channelID uint, kind EventKind, payload any) {
	h.mu.RLock()
	r, ok := h.rooms[channelID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	ev, overflowed := r.emit(channelID, kind, payload)
	for _, c := range overflowed {
		slog.Warn("outbound queue overflow, dropping connection",
			"clientID", c.id, "userID", c.userID, "channelID", channelID)
		h.unregister(c)
	}

	if ev != nil && h.sink != nil {
		if err := h.sink.Publish(ctx, ev); err != nil {
			slog.Error("event sink publish failed", "channelID", channelID, "kind", kind, "error", err)
		}
	}
}

// SetPresence runs an explicit status change through the presence state
// machine; the resulting transition fans out to all of the user's rooms.
func (h *Hub) SetPresence(ctx context.Context, userID uint, status models.UserStatus) error {
	return h.presence.SetStatus(ctx, userID, status)
}

// publishPresence delivers one presence transition to every given room,
// each stamped with that room's own next sequence number. A nil room list
// means "resolve live from the registry".
func (h *Hub) publishPresence(userID uint, status models.UserStatus, lastActive time.Time, roomIDs []uint) {
	if roomIDs == nil {
		h.mu.RLock()
		roomIDs = h.userRoomsLocked(userID)
		h.mu.RUnlock()
	}

	payload := models.PresenceChanged{
		UserID:       userID,
		Status:       status,
		LastActiveAt: lastActive,
	}
	for _, id := range roomIDs {
		h.Dispatch(context.Background(), id, EventPresenceChanged, payload)
	}
}

// userRoomsLocked returns the union of rooms across all of a user's live
// connections. Caller holds h.mu.
func (h *Hub) userRoomsLocked(userID uint) []uint {
	var ids []uint
	for _, c := range h.userClients[userID] {
		for id := range c.rooms {
			ids = appendUniq(ids, id)
		}
	}
	return ids
}

func appendUniq(ids []uint, id uint) []uint {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

// RoomSubscriberCount reports how many connections a room currently has.
func (h *Hub) RoomSubscriberCount(channelID uint) int {
	h.mu.RLock()
	r, ok := h.rooms[channelID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	return r.size()
}

// ConnectionCount reports the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
