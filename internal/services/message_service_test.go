package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"teamchat-service/internal/models"
	"teamchat-service/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryMessages struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Message
}

func newMemoryMessages() *memoryMessages {
	return &memoryMessages{rows: make(map[uint]*models.Message)}
}

func (m *memoryMessages) Create(message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	message.ID = m.nextID
	message.CreatedAt = time.Now()
	stored := *message
	m.rows[message.ID] = &stored
	return nil
}

func (m *memoryMessages) FindByID(id uint) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (m *memoryMessages) ListByChannel(channelID uint, limit, offset int) ([]*models.Message, error) {
	return nil, nil
}

func (m *memoryMessages) SoftDelete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memoryMessages) ListReactions(messageIDs []uint) ([]*models.MessageReaction, error) {
	return nil, nil
}

type fakeChannels struct {
	canPost  bool
	touchErr error
	touched  int
}

func (f *fakeChannels) CanPost(channelID, userID uint) (bool, error) { return f.canPost, nil }
func (f *fakeChannels) IsMember(channelID, userID uint) (bool, error) {
	return f.canPost, nil
}
func (f *fakeChannels) TouchLastMessage(channelID uint, at time.Time) error {
	f.touched++
	return f.touchErr
}
func (f *fakeChannels) UpdateLastRead(channelID, userID uint, at time.Time) error { return nil }

type messageDispatchRecorder struct {
	mu     sync.Mutex
	events []websocket.EventKind
}

func (d *messageDispatchRecorder) Dispatch(_ context.Context, _ uint, kind websocket.EventKind, _ any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, kind)
}

func (d *messageDispatchRecorder) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

func TestCreateMessageCommitsThenDispatches(t *testing.T) {
	store := newMemoryMessages()
	dispatcher := &messageDispatchRecorder{}
	svc := NewMessageService(store, &fakeChannels{canPost: true}, dispatcher)

	resp, err := svc.Create(context.Background(), 3, &models.CreateMessageRequest{
		ChannelID: 7,
		Content:   "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)

	// The broadcast payload refers to a row a fresh read can find.
	_, err = store.FindByID(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dispatcher.count())
}

func TestCreateMessageRejectedWithoutPostPermission(t *testing.T) {
	store := newMemoryMessages()
	dispatcher := &messageDispatchRecorder{}
	svc := NewMessageService(store, &fakeChannels{canPost: false}, dispatcher)

	_, err := svc.Create(context.Background(), 3, &models.CreateMessageRequest{
		ChannelID: 7,
		Content:   "hello",
	})
	assert.ErrorIs(t, err, ErrCannotPost)
	assert.Zero(t, dispatcher.count())
}

// A failure updating the channel's denormalized last-message timestamp
// must not suppress the fan-out of a message that already committed.
func TestCreateMessageBroadcastsDespiteTouchFailure(t *testing.T) {
	store := newMemoryMessages()
	dispatcher := &messageDispatchRecorder{}
	channels := &fakeChannels{canPost: true, touchErr: errors.New("deadlock detected")}
	svc := NewMessageService(store, channels, dispatcher)

	resp, err := svc.Create(context.Background(), 3, &models.CreateMessageRequest{
		ChannelID: 7,
		Content:   "still delivered",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, channels.touched)
	assert.Equal(t, 1, dispatcher.count())

	_, err = store.FindByID(resp.ID)
	assert.NoError(t, err)
}
