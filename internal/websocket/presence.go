package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"teamchat-service/internal/models"
)

// StatusStore persists a user's sticky status (an explicitly chosen
// away/busy/online) so it survives reconnects until the user clears it or
// goes offline. Backed by Redis in production.
type StatusStore interface {
	SaveSticky(ctx context.Context, userID uint, status models.UserStatus) error
	LoadSticky(ctx context.Context, userID uint) (models.UserStatus, bool, error)
	ClearSticky(ctx context.Context, userID uint) error
}

// StatusWriter mirrors presence transitions onto the durable user row so
// history queries see the same status the fan-out reported.
type StatusWriter interface {
	PersistStatus(ctx context.Context, userID uint, status models.UserStatus, lastActive time.Time) error
}

type presenceEntry struct {
	status     models.UserStatus
	sticky     bool
	conns      int
	lastActive time.Time

	// offline fires after the grace window once the last connection
	// closed; a reconnect cancels it.
	offline *time.Timer

	// lastRooms is the room set snapshotted when the last connection
	// closed, used to target the eventual offline broadcast.
	lastRooms []uint
}

// PresenceTracker reduces any number of simultaneous connections per user
// to one presence value and broadcasts every transition. All connections of
// a user report the same status; an explicit set wins over the
// connection-derived default and sticks until cleared.
type PresenceTracker struct {
	mu    sync.Mutex
	users map[uint]*presenceEntry

	grace     time.Duration
	store     StatusStore
	writer    StatusWriter
	broadcast func(userID uint, status models.UserStatus, lastActive time.Time, roomIDs []uint)
}

func NewPresenceTracker(
	grace time.Duration,
	store StatusStore,
	writer StatusWriter,
	broadcast func(userID uint, status models.UserStatus, lastActive time.Time, roomIDs []uint),
) *PresenceTracker {
	return &PresenceTracker{
		users:     make(map[uint]*presenceEntry),
		grace:     grace,
		store:     store,
		writer:    writer,
		broadcast: broadcast,
	}
}

// Status reports the current presence value for a user.
func (p *PresenceTracker) Status(userID uint) models.UserStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.users[userID]; ok {
		return e.status
	}
	return models.UserStatusOffline
}

// ConnectionOpened records a new connection. The first connection brings
// the user online unless a sticky away/busy status is on record, in which
// case that status is respected.
func (p *PresenceTracker) ConnectionOpened(ctx context.Context, userID uint) {
	p.mu.Lock()
	e := p.entry(userID)
	if e.offline != nil {
		e.offline.Stop()
		e.offline = nil
	}
	e.conns++
	e.lastActive = time.Now()

	var transitioned bool
	var status models.UserStatus
	if e.conns == 1 {
		prev := e.status
		next := models.UserStatusOnline
		if saved, ok := p.loadSticky(ctx, userID); ok {
			next = saved
			e.sticky = true
		}
		e.status = next
		if next != prev {
			transitioned = true
			status = next
		}
	}
	lastActive := e.lastActive
	p.mu.Unlock()

	if transitioned {
		p.persist(ctx, userID, status, lastActive)
		p.broadcast(userID, status, lastActive, nil)
	}
}

// SetStatus applies an explicit status choice, records it as sticky and
// broadcasts the transition. Offline cannot be chosen explicitly; it is
// reached only by closing the last connection.
func (p *PresenceTracker) SetStatus(ctx context.Context, userID uint, status models.UserStatus) error {
	if !status.IsValid() || status == models.UserStatusOffline {
		return ErrInvalidStatus
	}

	p.mu.Lock()
	e := p.entry(userID)
	e.status = status
	e.sticky = true
	e.lastActive = time.Now()
	lastActive := e.lastActive
	p.mu.Unlock()

	if p.store != nil {
		if err := p.store.SaveSticky(ctx, userID, status); err != nil {
			slog.Error("failed to save sticky status", "userID", userID, "error", err)
		}
	}
	p.persist(ctx, userID, status, lastActive)
	p.broadcast(userID, status, lastActive, nil)
	return nil
}

// ConnectionClosed records a closed connection. When the last one goes,
// the user flips to offline only after the grace window passes without a
// reconnect, so transient drops do not flap presence.
func (p *PresenceTracker) ConnectionClosed(ctx context.Context, userID uint, roomSnapshot []uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.users[userID]
	if !ok {
		return
	}
	e.conns--
	if e.conns > 0 {
		return
	}
	e.conns = 0
	e.lastRooms = roomSnapshot
	if e.offline != nil {
		e.offline.Stop()
	}
	e.offline = time.AfterFunc(p.grace, func() {
		p.goOffline(userID)
	})
}

func (p *PresenceTracker) goOffline(userID uint) {
	ctx := context.Background()

	p.mu.Lock()
	e, ok := p.users[userID]
	if !ok || e.conns > 0 {
		// Reconnected during the grace window.
		p.mu.Unlock()
		return
	}
	rooms := e.lastRooms
	lastActive := e.lastActive
	// Fully offline; the entry is dropped rather than kept around, so the
	// map only ever holds users with live connections or pending timers.
	delete(p.users, userID)
	p.mu.Unlock()

	if p.store != nil {
		if err := p.store.ClearSticky(ctx, userID); err != nil {
			slog.Error("failed to clear sticky status", "userID", userID, "error", err)
		}
	}
	p.persist(ctx, userID, models.UserStatusOffline, lastActive)
	if rooms == nil {
		// Nothing subscribed anywhere; still hand the broadcaster an
		// empty set rather than "resolve live", which would find none.
		rooms = []uint{}
	}
	p.broadcast(userID, models.UserStatusOffline, lastActive, rooms)
}

// Stop cancels all pending offline timers.
func (p *PresenceTracker) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.users {
		if e.offline != nil {
			e.offline.Stop()
			e.offline = nil
		}
	}
}

func (p *PresenceTracker) entry(userID uint) *presenceEntry {
	e, ok := p.users[userID]
	if !ok {
		e = &presenceEntry{status: models.UserStatusOffline}
		p.users[userID] = e
	}
	return e
}

func (p *PresenceTracker) loadSticky(ctx context.Context, userID uint) (models.UserStatus, bool) {
	if p.store == nil {
		return "", false
	}
	status, ok, err := p.store.LoadSticky(ctx, userID)
	if err != nil {
		slog.Error("failed to load sticky status", "userID", userID, "error", err)
		return "", false
	}
	if !ok || (status != models.UserStatusAway && status != models.UserStatusBusy) {
		return "", false
	}
	return status, true
}

func (p *PresenceTracker) persist(ctx context.Context, userID uint, status models.UserStatus, lastActive time.Time) {
	if p.writer == nil {
		return
	}
	if err := p.writer.PersistStatus(ctx, userID, status, lastActive); err != nil {
		slog.Error("failed to persist presence", "userID", userID, "status", status, "error", err)
	}
}
