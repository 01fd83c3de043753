package repositories

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"logingate/internal/models"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = pq.ErrorCode("23505")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

// EnsureSchema creates the users table when it is missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (id, name, display_name, mobile, email, password_hash, forbidden, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.ID,
		user.Name,
		user.DisplayName,
		nullString(user.Mobile),
		nullString(user.Email),
		user.PasswordHash,
		user.Forbidden,
		nullInt64(user.TelegramChatID),
	).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

const selectUser = `
	SELECT id, name, display_name, mobile, email, password_hash, forbidden,
		COALESCE(telegram_chat_id, 0), created_at
	FROM users
`

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, selectUser+" WHERE id = $1", id))
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, selectUser+" WHERE name = $1", name))
}

func (r *userRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		mobile sql.NullString
		email  sql.NullString
		hash   sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.DisplayName, &mobile, &email, &hash, &u.Forbidden, &u.TelegramChatID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user scan: %w", err)
	}
	u.Mobile = mobile.String
	u.Email = email.String
	u.PasswordHash = hash.String
	return u, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
}

func (r *userRepository) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
