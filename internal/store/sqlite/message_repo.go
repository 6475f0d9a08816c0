package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"parley/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

// Create persists the message, advances the conversation's updated_at, and
// inserts the derived notifications in a single transaction. A subscriber that
// later sees the live event is therefore guaranteed to find the same rows via
// a history fetch.
func (r *MessageRepo) Create(ctx context.Context, m *domain.Message, notifs []*domain.Notification) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO messages (conversation_id, sender_id, body, created_at)
		VALUES (?, ?, ?, ?)
	`, m.ConversationID, m.SenderID, m.Body, toNS(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id

	if _, err := tx.ExecContext(ctx, `
		UPDATE conversations SET updated_at = ? WHERE id = ?
	`, toNS(m.CreatedAt), m.ConversationID); err != nil {
		return fmt.Errorf("advance updated_at: %w", err)
	}

	for _, n := range notifs {
		n.MessageID = &m.ID
		n.CreatedAt = m.CreatedAt
		res, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (user_id, conversation_id, message_id, kind, text, read, created_at)
			VALUES (?, ?, ?, ?, ?, 0, ?)
		`, n.UserID, n.ConversationID, n.MessageID, n.Kind, n.Text, toNS(n.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		nid, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		n.ID = nid
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListPage fetches the newest rows first, optionally restricted to rows
// strictly older than before, then reverses the page so callers always get
// ascending chronological order.
func (r *MessageRepo) ListPage(ctx context.Context, conversationID int64, before *time.Time, limit int) ([]*domain.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.body, m.created_at,
			u.email, u.display_name
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = ?
	`
	args := []any{conversationID}
	if before != nil {
		query += ` AND m.created_at < ?`
		args = append(args, toNS(*before))
	}
	query += ` ORDER BY m.created_at DESC, m.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		var createdNS int64
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.SenderID,
			&m.Body,
			&createdNS,
			&m.SenderEmail,
			&m.SenderName,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = fromNS(createdNS)
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res, nil
}
