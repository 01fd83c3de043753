package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TelegramLink is a one-time code a signed in user hands to the bot to bind
// their Telegram chat.
type TelegramLink struct {
	Code      string
	UserID    string
	ExpiresAt time.Time
}

type TelegramLinkRepository interface {
	Issue(ctx context.Context, link TelegramLink) error
	// Redeem spends code and stores chatID on its user in one transaction,
	// returning the user id. Unknown, spent and expired codes return
	// ErrNotFound. On any error nothing is written and the code stays
	// redeemable.
	Redeem(ctx context.Context, code string, chatID int64, now time.Time) (string, error)
}

type telegramLinkRepository struct{ db *sql.DB }

func NewTelegramLinkRepository(db *sql.DB) TelegramLinkRepository {
	return &telegramLinkRepository{db: db}
}

func (r *telegramLinkRepository) Issue(ctx context.Context, link TelegramLink) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO telegram_links (code, user_id, expires_at) VALUES ($1, $2, $3)`,
		link.Code, link.UserID, link.ExpiresAt)
	if err != nil {
		return fmt.Errorf("telegram link issue: %w", err)
	}
	return nil
}

func (r *telegramLinkRepository) Redeem(ctx context.Context, code string, chatID int64, now time.Time) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// the row lock taken by the update makes a second redeem of the same
	// code wait, then miss on redeemed_at
	var userID string
	err = tx.QueryRowContext(ctx, `
		UPDATE telegram_links SET chat_id = $2, redeemed_at = $3
		WHERE code = $1 AND redeemed_at IS NULL AND expires_at > $3
		RETURNING user_id
	`, code, chatID, now).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("telegram link redeem: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE users SET telegram_chat_id = $1 WHERE id = $2`, chatID, userID)
	if err != nil {
		return "", fmt.Errorf("telegram link bind chat: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return "", err
	} else if n == 0 {
		return "", ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return userID, nil
}
