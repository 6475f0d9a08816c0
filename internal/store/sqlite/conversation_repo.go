package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"parley/internal/domain"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

func (r *ConversationRepo) Create(ctx context.Context, c *domain.Conversation, participantIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (name, created_at, updated_at)
		VALUES (?, ?, ?)
	`, c.Name, toNS(now), toNS(now))
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now

	for _, uid := range participantIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO conversation_participants (conversation_id, user_id, joined_at)
			VALUES (?, ?, ?)
		`, id, uid, toNS(now)); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM conversations
		WHERE id = ?
	`
	c := &domain.Conversation{}
	var createdNS, updatedNS int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&createdNS,
		&updatedNS,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	c.CreatedAt = fromNS(createdNS)
	c.UpdatedAt = fromNS(updatedNS)
	return c, nil
}

// ListForUser returns the caller's conversations ordered by recency, each with
// a preview of its latest message. Participants are filled in by the service.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error) {
	query := `
		SELECT c.id, c.name, c.created_at, c.updated_at,
			(SELECT body FROM messages WHERE conversation_id = c.id ORDER BY created_at DESC, id DESC LIMIT 1),
			(SELECT created_at FROM messages WHERE conversation_id = c.id ORDER BY created_at DESC, id DESC LIMIT 1)
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = ?
		ORDER BY c.updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var res []*domain.ConversationSummary
	for rows.Next() {
		s := &domain.ConversationSummary{}
		var createdNS, updatedNS int64
		var lastAtNS sql.NullInt64
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&createdNS,
			&updatedNS,
			&s.LastMessageBody,
			&lastAtNS,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		s.CreatedAt = fromNS(createdNS)
		s.UpdatedAt = fromNS(updatedNS)
		if lastAtNS.Valid {
			t := fromNS(lastAtNS.Int64)
			s.LastMessageAt = &t
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
