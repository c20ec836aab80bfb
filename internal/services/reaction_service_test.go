package services

import (
	"context"
	"sync"
	"testing"

	"teamchat-service/internal/models"
	"teamchat-service/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reactionKey struct {
	messageID uint
	userID    uint
	emojiID   uint
}

// memoryToggler mimics the conditional insert/delete the Postgres
// repository performs against the composite unique index.
type memoryToggler struct {
	mu   sync.Mutex
	rows map[reactionKey]bool
}

func newMemoryToggler() *memoryToggler {
	return &memoryToggler{rows: make(map[reactionKey]bool)}
}

func (t *memoryToggler) Toggle(_ context.Context, messageID, userID, emojiID uint) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := reactionKey{messageID, userID, emojiID}
	if t.rows[k] {
		delete(t.rows, k)
		return models.ReactionRemoved, nil
	}
	t.rows[k] = true
	return models.ReactionAdded, nil
}

func (t *memoryToggler) exists(messageID, userID, emojiID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows[reactionKey{messageID, userID, emojiID}]
}

type staticMessages struct {
	messages map[uint]*models.Message
}

func (s *staticMessages) FindByID(id uint) (*models.Message, error) {
	m, ok := s.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

type staticMembership struct {
	members map[uint]map[uint]bool
}

func (s *staticMembership) IsMember(channelID, userID uint) (bool, error) {
	return s.members[channelID][userID], nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []models.ReactionToggled
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ uint, _ websocket.EventKind, payload any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if toggled, ok := payload.(models.ReactionToggled); ok {
		d.events = append(d.events, toggled)
	}
}

func (d *recordingDispatcher) toggles() []models.ReactionToggled {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.ReactionToggled, len(d.events))
	copy(out, d.events)
	return out
}

func newToggleFixture() (*ReactionService, *memoryToggler, *recordingDispatcher) {
	toggler := newMemoryToggler()
	dispatcher := &recordingDispatcher{}
	svc := NewReactionService(
		toggler,
		&staticMessages{messages: map[uint]*models.Message{
			1: {Model: gorm.Model{ID: 1}, ChannelID: 7, UserID: 2},
		}},
		&staticMembership{members: map[uint]map[uint]bool{
			7: {3: true},
		}},
		dispatcher,
	)
	return svc, toggler, dispatcher
}

func TestToggleAddsThenRemoves(t *testing.T) {
	svc, toggler, dispatcher := newToggleFixture()

	action, err := svc.Toggle(context.Background(), 1, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionAdded, action)
	assert.True(t, toggler.exists(1, 3, 5))

	action, err = svc.Toggle(context.Background(), 1, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionRemoved, action)
	assert.False(t, toggler.exists(1, 3, 5))

	events := dispatcher.toggles()
	require.Len(t, events, 2)
	assert.Equal(t, models.ReactionAdded, events[0].Action)
	assert.Equal(t, models.ReactionRemoved, events[1].Action)
	assert.Equal(t, uint(7), events[0].ChannelID)
}

func TestToggleRejectsNonMember(t *testing.T) {
	svc, toggler, dispatcher := newToggleFixture()

	_, err := svc.Toggle(context.Background(), 1, 99, 5)
	assert.ErrorIs(t, err, ErrNotChannelMember)
	assert.False(t, toggler.exists(1, 99, 5))
	assert.Empty(t, dispatcher.toggles())
}

func TestToggleUnknownMessage(t *testing.T) {
	svc, _, dispatcher := newToggleFixture()

	_, err := svc.Toggle(context.Background(), 404, 3, 5)
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.Empty(t, dispatcher.toggles())
}

// Concurrent toggles of one key serialize on the keyed lock: every toggle
// produces exactly one broadcast, the actions strictly alternate, and the
// final row state matches the parity of the toggle count.
func TestConcurrentTogglesAlternateAndBroadcastOnce(t *testing.T) {
	svc, toggler, dispatcher := newToggleFixture()

	const n = 101
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Toggle(context.Background(), 1, 3, 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, toggler.exists(1, 3, 5), "odd toggle count must leave the reaction present")

	events := dispatcher.toggles()
	require.Len(t, events, n)
	for i, ev := range events {
		want := models.ReactionAdded
		if i%2 == 1 {
			want = models.ReactionRemoved
		}
		assert.Equal(t, want, ev.Action, "event %d", i)
	}
}

// Distinct keys never block each other on storage state, only at worst on
// a shared lock shard, so toggles across many messages all land.
func TestTogglesAcrossKeysAreIndependent(t *testing.T) {
	toggler := newMemoryToggler()
	dispatcher := &recordingDispatcher{}
	messages := map[uint]*models.Message{}
	for id := uint(1); id <= 20; id++ {
		messages[id] = &models.Message{Model: gorm.Model{ID: id}, ChannelID: 7, UserID: 2}
	}
	svc := NewReactionService(
		toggler,
		&staticMessages{messages: messages},
		&staticMembership{members: map[uint]map[uint]bool{7: {3: true}}},
		dispatcher,
	)

	var wg sync.WaitGroup
	for id := uint(1); id <= 20; id++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.Toggle(context.Background(), id, 3, 5)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	for id := uint(1); id <= 20; id++ {
		assert.True(t, toggler.exists(id, 3, 5))
	}
	assert.Len(t, dispatcher.toggles(), 20)
}
