package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"parley/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, display_name, created_at)
		VALUES (?, ?, ?, ?)
	`, u.Email, u.PasswordHash, u.DisplayName, toNS(u.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, email, password_hash, display_name, created_at FROM users WHERE id = ?`
	return r.scanUser(ctx, query, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, display_name, created_at FROM users WHERE email = ?`
	return r.scanUser(ctx, query, email)
}

func (r *UserRepo) ListOthers(ctx context.Context, excludeID int64) ([]*domain.User, error) {
	query := `
		SELECT id, email, password_hash, display_name, created_at
		FROM users
		WHERE id != ?
		ORDER BY display_name, email
	`
	rows, err := r.db.QueryContext(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		var createdNS int64
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &createdNS); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = fromNS(createdNS)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	var createdNS int64
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&createdNS,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = fromNS(createdNS)
	return u, nil
}
