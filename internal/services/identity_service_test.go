package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logingate/internal/models"
	"logingate/internal/repositories"
	"logingate/internal/utils"
)

// memUserRepo is a map backed UserRepository.
type memUserRepo struct {
	byID map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*models.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.byID {
		if u.Name == user.Name {
			return repositories.ErrAlreadyExists
		}
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByName(ctx context.Context, name string) (*models.User, error) {
	for _, u := range r.byID {
		if u.Name == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	u, ok := r.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

const testSecret = "test-secret"

func TestIdentityService_CreateAndCheckPassword(t *testing.T) {
	repo := newMemUserRepo()
	s := NewIdentityService(repo, testSecret, time.Hour, utils.NewFakeClock(t0))
	ctx := context.Background()

	id, err := s.CreateUser(ctx, &models.User{Name: "alice"}, "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored := repo.byID[id]
	assert.Equal(t, "alice", stored.DisplayName)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)

	assert.NoError(t, s.CheckPasswordLogin(ctx, "alice", "s3cret"))
	assert.ErrorIs(t, s.CheckPasswordLogin(ctx, "alice", "wrong"), models.ErrPasswordIncorrect)
	assert.ErrorIs(t, s.CheckPasswordLogin(ctx, "bob", "s3cret"), models.ErrUserNotExist)

	_, err = s.CreateUser(ctx, &models.User{Name: "alice"}, "x")
	assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
}

func TestIdentityService_CodeOnlyUserHasNoPassword(t *testing.T) {
	s := NewIdentityService(newMemUserRepo(), testSecret, time.Hour, utils.NewFakeClock(t0))
	ctx := context.Background()

	_, err := s.CreateUser(ctx, &models.User{Name: mobile, Mobile: mobile}, "")
	require.NoError(t, err)
	assert.ErrorIs(t, s.CheckPasswordLogin(ctx, mobile, ""), models.ErrPasswordIncorrect)
}

func TestIdentityService_Forbidden(t *testing.T) {
	repo := newMemUserRepo()
	s := NewIdentityService(repo, testSecret, time.Hour, utils.NewFakeClock(t0))
	ctx := context.Background()

	id, err := s.CreateUser(ctx, &models.User{Name: "mallory", Forbidden: true}, "pw")
	require.NoError(t, err)
	require.True(t, repo.byID[id].Forbidden)
	assert.ErrorIs(t, s.CheckPasswordLogin(ctx, "mallory", "pw"), models.ErrUserForbidden)
}

func TestIdentityService_GetUserToken(t *testing.T) {
	clock := utils.NewFakeClock(time.Now())
	s := NewIdentityService(newMemUserRepo(), testSecret, time.Hour, clock)
	ctx := context.Background()

	_, err := s.GetUserToken(ctx, "ghost", "c")
	assert.ErrorIs(t, err, models.ErrUserNotExist)

	id, err := s.CreateUser(ctx, &models.User{Name: "alice"}, "")
	require.NoError(t, err)
	tok, err := s.GetUserToken(ctx, id, "desktop-1")
	require.NoError(t, err)

	claims, err := utils.ParseToken(tok, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "desktop-1", claims.ClientID)
}

func TestIdentityService_UpdatePassword(t *testing.T) {
	s := NewIdentityService(newMemUserRepo(), testSecret, time.Hour, utils.NewFakeClock(t0))
	ctx := context.Background()

	id, err := s.CreateUser(ctx, &models.User{Name: "alice"}, "old")
	require.NoError(t, err)

	assert.ErrorIs(t, s.UpdatePassword(ctx, id, "bad", "new"), models.ErrPasswordIncorrect)
	assert.ErrorIs(t, s.UpdatePassword(ctx, "ghost", "old", "new"), models.ErrUserNotExist)
	require.NoError(t, s.UpdatePassword(ctx, id, "old", "new"))
	assert.NoError(t, s.CheckPasswordLogin(ctx, "alice", "new"))
	assert.ErrorIs(t, s.CheckPasswordLogin(ctx, "alice", "old"), models.ErrPasswordIncorrect)
}
