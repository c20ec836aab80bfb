package websocket

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchAssignsGaplessSequencePerRoom(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{})
	defer hub.Close()

	c1 := connect(hub, 1)
	c2 := connect(hub, 2)
	require.NoError(t, hub.Subscribe(context.Background(), c1, 10))
	require.NoError(t, hub.Subscribe(context.Background(), c2, 10))

	for i := 0; i < 5; i++ {
		hub.Dispatch(context.Background(), 10, EventMessageCreated, map[string]any{"n": i})
	}

	for _, c := range []*Client{c1, c2} {
		events := receivedEvents(c)
		require.Len(t, events, 5)
		for i, ev := range events {
			assert.Equal(t, uint64(i+1), ev.Seq)
			assert.Equal(t, uint(10), ev.RoomID)
			assert.Equal(t, EventMessageCreated, ev.Kind)
		}
	}
}

func TestDispatchToRoomWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{})
	defer hub.Close()

	// Must not panic or create the room.
	hub.Dispatch(context.Background(), 99, EventMessageCreated, "payload")
	assert.Equal(t, 0, hub.RoomSubscriberCount(99))
}

func TestSubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{})
	defer hub.Close()

	c := connect(hub, 1)
	require.NoError(t, hub.Subscribe(context.Background(), c, 10))
	require.NoError(t, hub.Subscribe(context.Background(), c, 10))
	assert.Equal(t, 1, hub.RoomSubscriberCount(10))

	hub.Dispatch(context.Background(), 10, EventMessageCreated, "once")
	assert.Len(t, receivedEvents(c), 1)
}

func TestSubscribeRejectedForNonMember(t *testing.T) {
	resolver := &memberResolver{members: map[uint]map[uint]bool{
		10: {1: true},
	}}
	hub := NewHub(resolver, Options{})
	defer hub.Close()

	memberConn := connect(hub, 1)
	outsiderConn := connect(hub, 2)

	require.NoError(t, hub.Subscribe(context.Background(), memberConn, 10))
	err := hub.Subscribe(context.Background(), outsiderConn, 10)
	require.ErrorIs(t, err, ErrNotAMember)

	// The rejected connection stays registered.
	assert.Equal(t, 2, hub.ConnectionCount())

	hub.Dispatch(context.Background(), 10, EventMessageCreated, map[string]any{"text": "hi"})

	memberEvents := receivedEvents(memberConn)
	require.Len(t, memberEvents, 1)
	assert.Equal(t, uint64(1), memberEvents[0].Seq)
	assert.Empty(t, receivedEvents(outsiderConn))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{})
	defer hub.Close()

	c := connect(hub, 1)
	require.NoError(t, hub.Subscribe(context.Background(), c, 10))
	hub.Dispatch(context.Background(), 10, EventMessageCreated, "before")
	hub.Unsubscribe(c, 10)
	hub.Dispatch(context.Background(), 10, EventMessageCreated, "after")

	events := receivedEvents(c)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].Seq)
}

func TestEmptyRoomIsGarbageCollected(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{})
	defer hub.Close()

	c := connect(hub, 1)
	require.NoError(t, hub.Subscribe(context.Background(), c, 10))
	assert.Equal(t, 1, hub.RoomSubscriberCount(10))

	hub.Unsubscribe(c, 10)
	assert.Equal(t, 0, hub.RoomSubscriberCount(10))

	hub.mu.RLock()
	_, exists := hub.rooms[10]
	hub.mu.RUnlock()
	assert.False(t, exists, "empty room should be collected")
}

func TestUnregisterRemovesConnectionFromAllRooms(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{})
	defer hub.Close()

	c := connect(hub, 1)
	other := connect(hub, 2)
	require.NoError(t, hub.Subscribe(context.Background(), c, 10))
	require.NoError(t, hub.Subscribe(context.Background(), c, 20))
	require.NoError(t, hub.Subscribe(context.Background(), other, 10))

	hub.unregister(c)

	assert.Equal(t, 1, hub.ConnectionCount())
	assert.Equal(t, 1, hub.RoomSubscriberCount(10))
	assert.Equal(t, 0, hub.RoomSubscriberCount(20))

	// unregister is idempotent
	hub.unregister(c)
	assert.Equal(t, 1, hub.ConnectionCount())
}

func TestSlowConsumerIsDroppedNotBlocked(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{QueueSize: 2})
	defer hub.Close()

	slow := connect(hub, 1)
	fast := connect(hub, 2)
	require.NoError(t, hub.Subscribe(context.Background(), slow, 10))
	require.NoError(t, hub.Subscribe(context.Background(), fast, 10))

	// Fill the slow consumer's queue, then overflow it. Nobody drains
	// "slow"; "fast" is drained between dispatches.
	for i := 0; i < 3; i++ {
		hub.Dispatch(context.Background(), 10, EventMessageCreated, map[string]any{"n": i})
		receivedEvents(fast)
	}

	assert.Equal(t, 1, hub.ConnectionCount(), "overflowing connection must be dropped")
	assert.Equal(t, 1, hub.RoomSubscriberCount(10))
	assert.True(t, slow.isClosed())
}

func TestConcurrentDispatchKeepsSingleTotalOrder(t *testing.T) {
	const events = 200

	hub := NewHub(allowAllResolver{}, Options{QueueSize: events})
	defer hub.Close()

	c := connect(hub, 1)
	require.NoError(t, hub.Subscribe(context.Background(), c, 10))

	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hub.Dispatch(context.Background(), 10, EventMessageCreated, map[string]any{"n": n})
		}(i)
	}
	wg.Wait()

	got := receivedEvents(c)
	require.Len(t, got, events)
	seen := make(map[uint64]bool, events)
	for i, ev := range got {
		assert.Equal(t, uint64(i+1), ev.Seq, "per-room sequence must be gapless and in order")
		assert.False(t, seen[ev.Seq], "sequence %d delivered twice", ev.Seq)
		seen[ev.Seq] = true
	}
}

func TestDispatchAcrossRoomsIsIndependent(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{})
	defer hub.Close()

	c1 := connect(hub, 1)
	c2 := connect(hub, 2)
	require.NoError(t, hub.Subscribe(context.Background(), c1, 10))
	require.NoError(t, hub.Subscribe(context.Background(), c2, 20))

	hub.Dispatch(context.Background(), 10, EventMessageCreated, "a")
	hub.Dispatch(context.Background(), 20, EventMessageCreated, "b")
	hub.Dispatch(context.Background(), 10, EventMessageCreated, "c")

	ev1 := receivedEvents(c1)
	require.Len(t, ev1, 2)
	assert.Equal(t, uint64(1), ev1[0].Seq)
	assert.Equal(t, uint64(2), ev1[1].Seq)

	ev2 := receivedEvents(c2)
	require.Len(t, ev2, 1)
	assert.Equal(t, uint64(1), ev2[0].Seq, "each room has its own counter")
}

type recordingSink struct {
	mu     sync.Mutex
	events []*Event
}

func (s *recordingSink) Publish(_ context.Context, ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func TestDispatchForwardsToSink(t *testing.T) {
	sink := &recordingSink{}
	hub := NewHub(allowAllResolver{}, Options{Sink: sink})
	defer hub.Close()

	c := connect(hub, 1)
	require.NoError(t, hub.Subscribe(context.Background(), c, 10))
	hub.Dispatch(context.Background(), 10, EventReactionToggled, "payload")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.events, 1)
	assert.Equal(t, EventReactionToggled, sink.events[0].Kind)
	assert.Equal(t, uint64(1), sink.events[0].Seq)
}

func TestUnencodablePayloadLeavesNoSequenceGap(t *testing.T) {
	hub := NewHub(allowAllResolver{}, Options{})
	defer hub.Close()

	c := connect(hub, 1)
	require.NoError(t, hub.Subscribe(context.Background(), c, 10))

	// Channels are not JSON-encodable; the event must be dropped without
	// consuming a sequence number.
	hub.Dispatch(context.Background(), 10, EventMessageCreated, make(chan int))
	hub.Dispatch(context.Background(), 10, EventMessageCreated, "after")

	events := receivedEvents(c)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].Seq)
}
