package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logingate/internal/models"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userColumns = []string{"id", "name", "display_name", "mobile", "email", "password_hash", "forbidden", "telegram_chat_id", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "+15551234567", "+15551234567", "+15551234567", nil, "", false, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	u := &models.User{ID: "u1", Name: "+15551234567", DisplayName: "+15551234567", Mobile: "+15551234567"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, now, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{ID: "u1", Name: "alice", DisplayName: "alice"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUserRepository_GetByName(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users") + `\s+WHERE name = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "alice", "Alice", nil, "alice@example.com", "hash", true, int64(77), now))

	u, err := repo.GetByName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "", u.Mobile)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.True(t, u.Forbidden)
	assert.Equal(t, int64(77), u.TelegramChatID)
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users") + `\s+WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1 WHERE id = $2")).
		WithArgs("newhash", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdatePassword(context.Background(), "u1", "newhash"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1 WHERE id = $2")).
		WithArgs("newhash", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), "ghost", "newhash"), ErrNotFound)
}

func TestEnsureSchema(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, EnsureSchema(context.Background(), db))
}
