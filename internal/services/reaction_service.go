package services

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"teamchat-service/internal/models"
	"teamchat-service/internal/websocket"

	"gorm.io/gorm"
)

// reactionLockShards spreads the per-key exclusive sections over a fixed
// set of mutexes; two distinct keys may share a shard and serialize
// needlessly, which is harmless, but one key always maps to one shard.
const reactionLockShards = 64

// ReactionToggler is the storage-side flip: a conditional insert/delete
// keyed by the composite unique index.
type ReactionToggler interface {
	Toggle(ctx context.Context, messageID, userID, emojiID uint) (string, error)
}

// MessageFinder resolves a message to its channel for the broadcast.
type MessageFinder interface {
	FindByID(id uint) (*models.Message, error)
}

// ChannelMembershipChecker gates toggles on channel membership.
type ChannelMembershipChecker interface {
	IsMember(channelID, userID uint) (bool, error)
}

// ReactionService enforces at most one live reaction per
// (message, user, emoji) and makes sure exactly one dispatch reflects
// each toggle. The storage layer's conditional insert is the real
// compare-and-swap; the keyed lock around commit-plus-dispatch keeps two
// racing toggles of one key from broadcasting out of order with the state
// they produced.
type ReactionService struct {
	reactions ReactionToggler
	messages  MessageFinder
	channels  ChannelMembershipChecker
	hub       Dispatcher

	locks [reactionLockShards]sync.Mutex
}

func NewReactionService(
	reactions ReactionToggler,
	messages MessageFinder,
	channels ChannelMembershipChecker,
	hub Dispatcher,
) *ReactionService {
	return &ReactionService{
		reactions: reactions,
		messages:  messages,
		channels:  channels,
		hub:       hub,
	}
}

// Toggle flips the reaction and reports the resulting action, "added" or
// "removed". Losing a race is not an error: the caller observes the
// post-toggle state and may toggle again if it still disagrees.
func (s *ReactionService) Toggle(ctx context.Context, messageID, userID, emojiID uint) (string, error) {
	message, err := s.messages.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrMessageNotFound
		}
		return "", err
	}

	member, err := s.channels.IsMember(message.ChannelID, userID)
	if err != nil {
		return "", err
	}
	if !member {
		return "", ErrNotChannelMember
	}

	lock := s.lockFor(messageID, userID, emojiID)
	lock.Lock()
	defer lock.Unlock()

	action, err := s.reactions.Toggle(ctx, messageID, userID, emojiID)
	if err != nil {
		return "", err
	}

	s.hub.Dispatch(ctx, message.ChannelID, websocket.EventReactionToggled, models.ReactionToggled{
		MessageID: messageID,
		ChannelID: message.ChannelID,
		UserID:    userID,
		EmojiID:   emojiID,
		Action:    action,
	})
	return action, nil
}

func (s *ReactionService) lockFor(messageID, userID, emojiID uint) *sync.Mutex {
	h := fnv.New32a()
	var buf [12]byte
	put32 := func(off int, v uint) {
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
	put32(0, messageID)
	put32(4, userID)
	put32(8, emojiID)
	h.Write(buf[:])
	return &s.locks[h.Sum32()%reactionLockShards]
}
