package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"teamchat-service/internal/models"
	"teamchat-service/internal/websocket"

	"gorm.io/gorm"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrCannotPost      = errors.New("cannot post to this channel")
)

// MessageStore is the message persistence the write and history paths use.
type MessageStore interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	ListByChannel(channelID uint, limit, offset int) ([]*models.Message, error)
	SoftDelete(id uint) error
	ListReactions(messageIDs []uint) ([]*models.MessageReaction, error)
}

// ChannelStore covers the channel-side checks and bookkeeping around
// messages.
type ChannelStore interface {
	CanPost(channelID, userID uint) (bool, error)
	IsMember(channelID, userID uint) (bool, error)
	TouchLastMessage(channelID uint, at time.Time) error
	UpdateLastRead(channelID, userID uint, at time.Time) error
}

type MessageService struct {
	messages MessageStore
	channels ChannelStore
	hub      Dispatcher
}

func NewMessageService(
	messages MessageStore,
	channels ChannelStore,
	hub Dispatcher,
) *MessageService {
	return &MessageService{
		messages: messages,
		channels: channels,
		hub:      hub,
	}
}

// Create commits the message and only then hands it to the hub, so every
// subscriber that sees the event can immediately find it in history.
func (s *MessageService) Create(ctx context.Context, userID uint, req *models.CreateMessageRequest) (*models.MessageResponse, error) {
	canPost, err := s.channels.CanPost(req.ChannelID, userID)
	if err != nil {
		return nil, err
	}
	if !canPost {
		return nil, ErrCannotPost
	}

	messageType := req.Type
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	message := &models.Message{
		ChannelID:      req.ChannelID,
		UserID:         userID,
		Content:        req.Content,
		Type:           messageType,
		ThreadID:       req.ThreadID,
		AttachmentURL:  req.AttachmentURL,
		AttachmentName: req.AttachmentName,
	}
	if err := s.messages.Create(message); err != nil {
		return nil, err
	}
	if err := s.channels.TouchLastMessage(req.ChannelID, message.CreatedAt); err != nil {
		// The message row is durable; a stale denormalized timestamp must
		// not suppress its fan-out.
		slog.Error("failed to touch channel last message", "channelID", req.ChannelID, "error", err)
	}

	// Reload with the author attached for the broadcast payload.
	stored, err := s.messages.FindByID(message.ID)
	if err != nil {
		return nil, err
	}
	resp := stored.ToResponse()

	s.hub.Dispatch(ctx, req.ChannelID, websocket.EventMessageCreated, resp)
	return &resp, nil
}

// History returns one page of channel history (oldest first) with the
// reaction projection attached. Live fan-out never replays history; this
// is the query path clients use to catch up.
func (s *MessageService) History(channelID, userID uint, limit, offset int) (*models.MessageHistoryResponse, error) {
	member, err := s.channels.IsMember(channelID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotChannelMember
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	messages, err := s.messages.ListByChannel(channelID, limit, offset)
	if err != nil {
		return nil, err
	}

	messageIDs := make([]uint, 0, len(messages))
	for _, m := range messages {
		messageIDs = append(messageIDs, m.ID)
	}
	reactions, err := s.messages.ListReactions(messageIDs)
	if err != nil {
		return nil, err
	}
	grouped := groupReactions(reactions)

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- { // oldest first for display
		resp := messages[i].ToResponse()
		if g, ok := grouped[messages[i].ID]; ok {
			resp.Reactions = g
		}
		responses = append(responses, resp)
	}

	return &models.MessageHistoryResponse{
		Messages: responses,
		HasMore:  len(messages) == limit,
	}, nil
}

// MarkRead records how far the user has read the channel.
func (s *MessageService) MarkRead(channelID, userID uint) error {
	return s.channels.UpdateLastRead(channelID, userID, time.Now())
}

func (s *MessageService) Delete(messageID, userID uint) error {
	message, err := s.messages.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if message.UserID != userID {
		return ErrMessageNotFound
	}
	return s.messages.SoftDelete(messageID)
}

// groupReactions builds the per-message grouping of reactions by emoji
// with counts and participant lists.
func groupReactions(reactions []*models.MessageReaction) map[uint][]models.ReactionGrouping {
	type key struct {
		messageID uint
		emojiID   uint
	}
	index := make(map[key]int)
	grouped := make(map[uint][]models.ReactionGrouping)

	for _, r := range reactions {
		k := key{r.MessageID, r.EmojiID}
		groups := grouped[r.MessageID]
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, models.ReactionGrouping{Emoji: r.Emoji})
		}
		groups[i].Count++
		groups[i].Users = append(groups[i].Users, r.User.ToResponse())
		grouped[r.MessageID] = groups
	}
	return grouped
}
