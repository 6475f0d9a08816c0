package domain

import (
	"context"
	"time"
)

// ConversationSummary is a conversation as presented in the caller's list:
// the row itself plus a preview of its most recent message and the full
// participant set.
type ConversationSummary struct {
	Conversation
	LastMessageBody *string    `json:"last_message_body"`
	LastMessageAt   *time.Time `json:"last_message_at"`
	Participants    []*User    `json:"participants"`
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListOthers(ctx context.Context, excludeID int64) ([]*User, error)
}

// ConversationRepository defines persistence operations for conversations.
type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation, participantIDs []int64) error
	GetByID(ctx context.Context, id int64) (*Conversation, error)
	ListForUser(ctx context.Context, userID int64) ([]*ConversationSummary, error)
}

// ParticipantRepository defines operations around conversation membership.
type ParticipantRepository interface {
	ListParticipants(ctx context.Context, conversationID int64) ([]*User, error)
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	// Create inserts the message, advances the conversation's updated_at to
	// the message's creation time, and inserts the derived notifications, all
	// in one transaction. Either everything is durable or nothing is.
	Create(ctx context.Context, m *Message, notifs []*Notification) error
	// ListPage returns up to limit messages in ascending chronological order,
	// restricted to rows strictly older than before when it is non-nil.
	ListPage(ctx context.Context, conversationID int64, before *time.Time, limit int) ([]*Message, error)
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*Notification, error)
	// MarkRead flips the read flag of the recipient's notification. Returns
	// ErrNotFound when the notification does not exist or belongs to someone
	// else; marking an already-read notification succeeds.
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}
