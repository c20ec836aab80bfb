package websocket

import (
	"encoding/json"
	"sync"
)

// room is the broadcast scope for one channel. It owns its sequence counter
// and subscriber set; both are guarded by the room's own mutex so seq
// assignment and subscriber enumeration for one channel are serialized
// without stalling unrelated channels.
//
// Rooms are created lazily on first subscribe and garbage-collected by the
// hub when the subscriber set empties. A room revived after collection
// starts a fresh sequence; subscribers only ever compare sequence numbers
// within one room lifetime.
type room struct {
	mu          sync.Mutex
	seq         uint64
	subscribers map[string]*Client // keyed by connection ID
}

func newRoom() *room {
	return &room{subscribers: make(map[string]*Client)}
}

// add registers a connection; subscribing twice is a no-op.
func (r *room) add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers[c.id] = c
}

// remove drops a connection and reports whether the room is now empty.
func (r *room) remove(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscribers, connID)
	return len(r.subscribers) == 0
}

// emit assigns the next sequence number, stamps the envelope and enqueues
// it to every subscriber. The whole assign-and-enqueue section holds the
// room lock, which is what gives subscribers a gapless per-room order.
// Connections whose outbound queue overflowed are returned for the hub to
// drop; enqueueing itself never blocks on a slow consumer.
func (r *room) emit(roomID uint, kind EventKind, payload any) (*Event, []*Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev := &Event{RoomID: roomID, Seq: r.seq + 1, Kind: kind, Payload: payload}

	data, err := json.Marshal(ev)
	if err != nil {
		// Payloads are our own DTOs; a marshal failure is a programming
		// error and the event is dropped for the whole room. The counter
		// only advances on success so the dropped event leaves no gap.
		return nil, nil
	}
	r.seq = ev.Seq

	var overflowed []*Client
	for _, c := range r.subscribers {
		if err := c.enqueue(data); err != nil {
			overflowed = append(overflowed, c)
		}
	}
	return ev, overflowed
}

func (r *room) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers)
}
