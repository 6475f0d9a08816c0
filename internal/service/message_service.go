package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"parley/internal/domain"
)

// Publisher delivers committed rows to live subscribers. Implementations must
// not block the caller: a slow or disconnected subscriber is the publisher's
// problem, never the sender's.
type Publisher interface {
	PublishMessage(m *domain.Message)
	PublishNotification(n *domain.Notification)
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// MessageService is the ingest and fan-out engine: it persists a message
// together with its derived notifications and publishes both to the live
// event channels, in that order.
type MessageService struct {
	conversations domain.ConversationRepository
	participants  domain.ParticipantRepository
	messages      domain.MessageRepository
	pub           Publisher
	log           zerolog.Logger
}

func NewMessageService(
	conversations domain.ConversationRepository,
	participants domain.ParticipantRepository,
	messages domain.MessageRepository,
	pub Publisher,
	log zerolog.Logger,
) *MessageService {
	return &MessageService{
		conversations: conversations,
		participants:  participants,
		messages:      messages,
		pub:           pub,
		log:           log.With().Str("component", "messages").Logger(),
	}
}

// Submit persists a new message and fans it out. The message row, the
// conversation's updated_at advance, and one notification per other
// participant commit as a single transaction; publication happens only after
// the commit, so a live event never precedes its rows.
func (s *MessageService) Submit(ctx context.Context, conversationID, senderID int64, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrInvalidArgument
	}

	ok, err := s.participants.IsParticipant(ctx, conversationID, senderID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if conv == nil {
		return nil, domain.ErrNotFound
	}

	members, err := s.participants.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	sender, found := lo.Find(members, func(u *domain.User) bool { return u.ID == senderID })
	if !found {
		return nil, domain.ErrNotFound
	}

	text := notificationText(sender, conv)
	others := lo.Filter(members, func(u *domain.User, _ int) bool { return u.ID != senderID })
	notifs := lo.Map(others, func(u *domain.User, _ int) *domain.Notification {
		return &domain.Notification{
			UserID:         u.ID,
			ConversationID: conversationID,
			Kind:           domain.NotificationKindNewMessage,
			Text:           text,
		}
	})

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		SenderEmail:    sender.Email,
		SenderName:     sender.DisplayName,
	}
	if err := s.messages.Create(ctx, msg, notifs); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	s.pub.PublishMessage(msg)
	for _, n := range notifs {
		s.pub.PublishNotification(n)
	}

	s.log.Debug().
		Int64("conversation_id", conversationID).
		Int64("message_id", msg.ID).
		Int("recipients", len(notifs)).
		Msg("message fanned out")
	return msg, nil
}

// ListPage serves cursor-based backward pagination: up to limit messages
// strictly older than before (or the most recent ones when before is nil),
// in ascending chronological order.
func (s *MessageService) ListPage(ctx context.Context, conversationID, requesterID int64, before *time.Time, limit int) ([]*domain.Message, error) {
	ok, err := s.participants.IsParticipant(ctx, conversationID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return s.messages.ListPage(ctx, conversationID, before, limit)
}

func notificationText(sender *domain.User, conv *domain.Conversation) string {
	if conv.Name != nil && *conv.Name != "" {
		return fmt.Sprintf("%s replied in %q", sender.Label(), *conv.Name)
	}
	return fmt.Sprintf("%s sent a message", sender.Label())
}
