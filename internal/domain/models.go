package domain

import "time"

// User represents an application user.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  *string   `db:"display_name" json:"display_name,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Label returns the name shown to other participants: the display name when
// set, otherwise the email address.
func (u *User) Label() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Email
}

// Conversation represents a chat conversation. UpdatedAt always equals the
// creation time of the most recent message, or CreatedAt while the
// conversation is still empty; it is advanced only by message insertion.
type Conversation struct {
	ID        int64     `db:"id" json:"id"`
	Name      *string   `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Participant is the membership of a user in a conversation.
type Participant struct {
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	JoinedAt       time.Time `db:"joined_at" json:"joined_at"`
}

// Message is a single chat message, immutable once created. CreatedAt is
// strictly increasing per conversation in insertion order.
type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	SenderID       int64     `db:"sender_id" json:"sender_id"`
	Body           string    `db:"body" json:"body"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	// Denormalized sender fields, populated on reads that join users.
	SenderEmail string  `db:"sender_email" json:"sender_email,omitempty"`
	SenderName  *string `db:"sender_name" json:"sender_name,omitempty"`
}

// NotificationKindNewMessage is the only notification kind currently emitted.
const NotificationKindNewMessage = "new_message"

// Notification is a derived per-recipient event. Exactly one is created per
// (message, recipient) pair for every participant other than the sender.
// Mutable only through the read flag.
type Notification struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	MessageID      *int64    `db:"message_id" json:"message_id,omitempty"`
	Kind           string    `db:"kind" json:"kind"`
	Text           string    `db:"text" json:"text"`
	Read           bool      `db:"read" json:"read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
