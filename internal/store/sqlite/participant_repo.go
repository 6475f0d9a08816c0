package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"parley/internal/domain"
)

type ParticipantRepo struct {
	db *sql.DB
}

func NewParticipantRepo(db *sql.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

var _ domain.ParticipantRepository = (*ParticipantRepo)(nil)

func (r *ParticipantRepo) ListParticipants(ctx context.Context, conversationID int64) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.display_name, u.created_at
		FROM users u
		JOIN conversation_participants cp ON cp.user_id = u.id
		WHERE cp.conversation_id = ?
		ORDER BY u.display_name, u.email
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		var createdNS int64
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &createdNS); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		u.CreatedAt = fromNS(createdNS)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *ParticipantRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1
		FROM conversation_participants
		WHERE conversation_id = ? AND user_id = ?
	`, conversationID, userID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is participant: %w", err)
	}
	return true, nil
}
