package websocket

import "context"

// EventKind identifies what a fan-out event carries.
type EventKind string

const (
	EventMessageCreated  EventKind = "message.created"
	EventReactionToggled EventKind = "reaction.toggled"
	EventPresenceChanged EventKind = "presence.changed"
)

func (k EventKind) String() string {
	return string(k)
}

func (k EventKind) IsValid() bool {
	switch k {
	case EventMessageCreated, EventReactionToggled, EventPresenceChanged:
		return true
	}
	return false
}

// Event is the single outbound envelope delivered to subscribers. Seq is
// assigned by the hub at dispatch time, one counter per room, so every
// subscriber of a room observes the same total order.
type Event struct {
	RoomID  uint      `json:"roomId"`
	Seq     uint64    `json:"seq"`
	Kind    EventKind `json:"kind"`
	Payload any       `json:"payload"`
}

// EventSink receives a copy of every dispatched event, e.g. for the
// analytics pipeline. Implementations must not block the caller for long;
// the hub invokes Publish outside its locks but on the dispatching
// goroutine.
type EventSink interface {
	Publish(ctx context.Context, ev *Event) error
}

// MembershipResolver authorizes room subscriptions. It is consulted on
// every subscribe request and never cached beyond it, since membership can
// be revoked while a connection stays open.
type MembershipResolver interface {
	CanSubscribe(ctx context.Context, userID, channelID uint) (bool, error)
}
