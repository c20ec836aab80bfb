package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"teamchat-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type presenceRecorder struct {
	mu          sync.Mutex
	transitions []models.PresenceChanged
	rooms       [][]uint
}

func (r *presenceRecorder) record(userID uint, status models.UserStatus, lastActive time.Time, roomIDs []uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, models.PresenceChanged{
		UserID: userID, Status: status, LastActiveAt: lastActive,
	})
	r.rooms = append(r.rooms, roomIDs)
}

func (r *presenceRecorder) last() (models.PresenceChanged, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.transitions) == 0 {
		return models.PresenceChanged{}, false
	}
	return r.transitions[len(r.transitions)-1], true
}

func (r *presenceRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transitions)
}

func TestFirstConnectionBringsUserOnline(t *testing.T) {
	rec := &presenceRecorder{}
	tracker := NewPresenceTracker(time.Minute, nil, nil, rec.record)
	defer tracker.Stop()

	tracker.ConnectionOpened(context.Background(), 1)

	assert.Equal(t, models.UserStatusOnline, tracker.Status(1))
	last, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, models.UserStatusOnline, last.Status)
}

func TestSecondConnectionDoesNotRebroadcast(t *testing.T) {
	rec := &presenceRecorder{}
	tracker := NewPresenceTracker(time.Minute, nil, nil, rec.record)
	defer tracker.Stop()

	tracker.ConnectionOpened(context.Background(), 1)
	tracker.ConnectionOpened(context.Background(), 1)

	assert.Equal(t, 1, rec.count(), "second device should not re-announce online")
}

func TestStickyStatusSurvivesReconnect(t *testing.T) {
	rec := &presenceRecorder{}
	store := newMemoryStatusStore()
	require.NoError(t, store.SaveSticky(context.Background(), 1, models.UserStatusAway))

	tracker := NewPresenceTracker(time.Minute, store, nil, rec.record)
	defer tracker.Stop()

	tracker.ConnectionOpened(context.Background(), 1)

	assert.Equal(t, models.UserStatusAway, tracker.Status(1),
		"explicit away must be respected over the online default")
}

func TestExplicitBusyWithTwoConnections(t *testing.T) {
	rec := &presenceRecorder{}
	tracker := NewPresenceTracker(time.Minute, nil, nil, rec.record)
	defer tracker.Stop()

	tracker.ConnectionOpened(context.Background(), 1)
	tracker.ConnectionOpened(context.Background(), 1)
	require.NoError(t, tracker.SetStatus(context.Background(), 1, models.UserStatusBusy))

	assert.Equal(t, models.UserStatusBusy, tracker.Status(1))

	// Closing one of two connections must not transition presence.
	before := rec.count()
	tracker.ConnectionClosed(context.Background(), 1, []uint{10})
	assert.Equal(t, models.UserStatusBusy, tracker.Status(1))
	assert.Equal(t, before, rec.count())
}

func TestOfflineAfterGraceWindow(t *testing.T) {
	rec := &presenceRecorder{}
	store := newMemoryStatusStore()
	tracker := NewPresenceTracker(20*time.Millisecond, store, nil, rec.record)
	defer tracker.Stop()

	tracker.ConnectionOpened(context.Background(), 1)
	require.NoError(t, tracker.SetStatus(context.Background(), 1, models.UserStatusBusy))
	tracker.ConnectionClosed(context.Background(), 1, []uint{10, 20})

	require.Eventually(t, func() bool {
		return tracker.Status(1) == models.UserStatusOffline
	}, time.Second, 5*time.Millisecond)

	last, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, models.UserStatusOffline, last.Status)

	// Stickiness is cleared with the offline transition.
	_, sticky, err := store.LoadSticky(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, sticky)

	// The offline broadcast targets the rooms snapshotted at close time.
	rec.mu.Lock()
	rooms := rec.rooms[len(rec.rooms)-1]
	rec.mu.Unlock()
	assert.ElementsMatch(t, []uint{10, 20}, rooms)
}

func TestReconnectWithinGraceCancelsOffline(t *testing.T) {
	rec := &presenceRecorder{}
	tracker := NewPresenceTracker(50*time.Millisecond, nil, nil, rec.record)
	defer tracker.Stop()

	tracker.ConnectionOpened(context.Background(), 1)
	tracker.ConnectionClosed(context.Background(), 1, nil)
	tracker.ConnectionOpened(context.Background(), 1)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, models.UserStatusOnline, tracker.Status(1),
		"reconnect within the grace window must keep the user online")
}

func TestExplicitOfflineRejected(t *testing.T) {
	tracker := NewPresenceTracker(time.Minute, nil, nil, func(uint, models.UserStatus, time.Time, []uint) {})
	defer tracker.Stop()

	err := tracker.SetStatus(context.Background(), 1, models.UserStatusOffline)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestPresenceFansOutToEveryRoomOfUser(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{})
	defer hub.Close()

	// User 1 on two devices across two rooms; user 2 watches room 10.
	dev1 := connect(hub, 1)
	dev2 := connect(hub, 1)
	watcher := connect(hub, 2)
	require.NoError(t, hub.Subscribe(context.Background(), dev1, 10))
	require.NoError(t, hub.Subscribe(context.Background(), dev2, 20))
	require.NoError(t, hub.Subscribe(context.Background(), watcher, 10))

	require.NoError(t, hub.SetPresence(context.Background(), 1, models.UserStatusBusy))

	watcherEvents := receivedEvents(watcher)
	require.Len(t, watcherEvents, 1)
	assert.Equal(t, EventPresenceChanged, watcherEvents[0].Kind)
	assert.Equal(t, uint(10), watcherEvents[0].RoomID)

	dev2Events := receivedEvents(dev2)
	require.Len(t, dev2Events, 1)
	assert.Equal(t, uint(20), dev2Events[0].RoomID)
	assert.Equal(t, uint64(1), dev2Events[0].Seq, "each room stamps its own next sequence")
}

func TestOfflineUserIsReleasedFromTracker(t *testing.T) {
	rec := &presenceRecorder{}
	tracker := NewPresenceTracker(20*time.Millisecond, nil, nil, rec.record)
	defer tracker.Stop()

	for userID := uint(1); userID <= 5; userID++ {
		tracker.ConnectionOpened(context.Background(), userID)
		tracker.ConnectionClosed(context.Background(), userID, nil)
	}

	// Once every grace window has elapsed the tracker holds no state for
	// the departed users.
	require.Eventually(t, func() bool {
		tracker.mu.Lock()
		defer tracker.mu.Unlock()
		return len(tracker.users) == 0
	}, time.Second, 5*time.Millisecond)

	// A later reconnect starts from a clean slate.
	tracker.ConnectionOpened(context.Background(), 1)
	assert.Equal(t, models.UserStatusOnline, tracker.Status(1))
}
