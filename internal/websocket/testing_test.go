package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"teamchat-service/internal/models"
)

// fakeConn is an in-memory Conn so hub behavior can be tested without the
// network or the pumps.
type fakeConn struct {
	mu     sync.Mutex
	writes [][]byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("connection closed")
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, data)
	return nil
}

func (f *fakeConn) SetReadLimit(int64)                 {}
func (f *fakeConn) SetReadDeadline(time.Time) error    { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetPongHandler(func(string) error)  {}
func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

// allowAllResolver authorizes every subscription.
type allowAllResolver struct{}

func (allowAllResolver) CanSubscribe(context.Context, uint, uint) (bool, error) {
	return true, nil
}

// memberResolver authorizes subscriptions from an explicit member list.
type memberResolver struct {
	members map[uint]map[uint]bool // channelID -> userID -> member
}

func (m *memberResolver) CanSubscribe(_ context.Context, userID, channelID uint) (bool, error) {
	return m.members[channelID][userID], nil
}

// memoryStatusStore is an in-memory StatusStore.
type memoryStatusStore struct {
	mu     sync.Mutex
	sticky map[uint]models.UserStatus
}

func newMemoryStatusStore() *memoryStatusStore {
	return &memoryStatusStore{sticky: make(map[uint]models.UserStatus)}
}

func (s *memoryStatusStore) SaveSticky(_ context.Context, userID uint, status models.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sticky[userID] = status
	return nil
}

func (s *memoryStatusStore) LoadSticky(_ context.Context, userID uint) (models.UserStatus, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.sticky[userID]
	return status, ok, nil
}

func (s *memoryStatusStore) ClearSticky(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sticky, userID)
	return nil
}

// connect registers a fresh client backed by a fake conn.
func connect(h *Hub, userID uint) *Client {
	c := newClient(h, newFakeConn(), userID, h.queueSize)
	h.register(c)
	return c
}

// receivedEvents drains and decodes every queued event envelope, skipping
// control frames.
func receivedEvents(c *Client) []Event {
	var events []Event
	for {
		select {
		case data := <-c.send:
			var ev Event
			if err := json.Unmarshal(data, &ev); err == nil && ev.Kind != "" {
				events = append(events, ev)
			}
		default:
			return events
		}
	}
}
