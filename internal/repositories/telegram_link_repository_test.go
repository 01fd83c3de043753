package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramLinkRepository_Issue(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := NewTelegramLinkRepository(db)
	exp := time.Now().Add(15 * time.Minute)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO telegram_links (code, user_id, expires_at)")).
		WithArgs("ABC", "u1", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Issue(context.Background(), TelegramLink{Code: "ABC", UserID: "u1", ExpiresAt: exp}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTelegramLinkRepository_Redeem(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := NewTelegramLinkRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE telegram_links SET chat_id = $2, redeemed_at = $3")).
		WithArgs("ABC", int64(42), now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET telegram_chat_id = $1 WHERE id = $2")).
		WithArgs(int64(42), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	userID, err := repo.Redeem(context.Background(), "ABC", 42, now)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTelegramLinkRepository_RedeemSpentOrExpired(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := NewTelegramLinkRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE telegram_links")).
		WithArgs("ABC", int64(42), now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), "ABC", 42, now)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTelegramLinkRepository_RedeemRollsBackWhenUserUpdateFails(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := NewTelegramLinkRepository(db)
	now := time.Now()
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE telegram_links")).
		WithArgs("ABC", int64(42), now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET telegram_chat_id")).
		WithArgs(int64(42), "u1").
		WillReturnError(boom)
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), "ABC", 42, now)
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
