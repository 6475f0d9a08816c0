package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"parley/internal/domain"
)

type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, conversation_id, message_id, kind, text, read, created_at
		FROM notifications
		WHERE user_id = ?
	`
	args := []any{userID}
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var res []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		var createdNS int64
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.ConversationID,
			&n.MessageID,
			&n.Kind,
			&n.Text,
			&n.Read,
			&createdNS,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt = fromNS(createdNS)
		res = append(res, n)
	}
	return res, rows.Err()
}

// MarkRead is idempotent: the UPDATE matches the row whether or not it is
// already read, so only a missing or foreign notification yields ErrNotFound.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1 WHERE user_id = ?
	`, userID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}
