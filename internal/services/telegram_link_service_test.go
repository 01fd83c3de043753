package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logingate/internal/logging"
	"logingate/internal/models"
	"logingate/internal/repositories"
	"logingate/internal/utils"
)

// memLinks redeems codes against a memUserRepo. failBind makes the next
// redeem fail without spending the code.
type memLinks struct {
	links    map[string]repositories.TelegramLink
	spent    map[string]bool
	users    *memUserRepo
	failBind error
}

func newMemLinks(users *memUserRepo) *memLinks {
	return &memLinks{links: map[string]repositories.TelegramLink{}, spent: map[string]bool{}, users: users}
}

func (m *memLinks) Issue(ctx context.Context, link repositories.TelegramLink) error {
	m.links[link.Code] = link
	return nil
}

func (m *memLinks) Redeem(ctx context.Context, code string, chatID int64, now time.Time) (string, error) {
	l, ok := m.links[code]
	if !ok || m.spent[code] || !now.Before(l.ExpiresAt) {
		return "", repositories.ErrNotFound
	}
	if err := m.failBind; err != nil {
		m.failBind = nil
		return "", err
	}
	u, ok := m.users.byID[l.UserID]
	if !ok {
		return "", repositories.ErrNotFound
	}
	u.TelegramChatID = chatID
	m.spent[code] = true
	return l.UserID, nil
}

func TestTelegramLinkService(t *testing.T) {
	clock := utils.NewFakeClock(t0)
	users := newMemUserRepo()
	users.byID["u1"] = &models.User{ID: "u1", Name: "alice"}
	s := NewTelegramLinkService(newMemLinks(users), clock, time.Minute, logging.Discard())
	ctx := context.Background()

	resp, err := s.RequestLink(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, resp.Code, 32)
	assert.Equal(t, t0.Add(time.Minute), resp.ExpiresAt)

	userID, err := s.Link(ctx, " «"+strings.ToLower(resp.Code)+"» ", 555)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, int64(555), users.byID["u1"].TelegramChatID)

	_, err = s.Link(ctx, resp.Code, 555)
	assert.ErrorIs(t, err, ErrInvalidLinkCode)
	_, err = s.Link(ctx, "short", 555)
	assert.ErrorIs(t, err, ErrInvalidLinkCode)
}

func TestTelegramLinkService_FailedLinkKeepsCode(t *testing.T) {
	clock := utils.NewFakeClock(t0)
	users := newMemUserRepo()
	users.byID["u1"] = &models.User{ID: "u1", Name: "alice"}
	links := newMemLinks(users)
	s := NewTelegramLinkService(links, clock, time.Minute, logging.Discard())
	ctx := context.Background()

	resp, err := s.RequestLink(ctx, "u1")
	require.NoError(t, err)

	links.failBind = errBoom{}
	_, err = s.Link(ctx, resp.Code, 555)
	assert.ErrorIs(t, err, errBoom{})
	assert.NotErrorIs(t, err, ErrInvalidLinkCode)
	assert.Zero(t, users.byID["u1"].TelegramChatID)

	userID, err := s.Link(ctx, resp.Code, 555)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, int64(555), users.byID["u1"].TelegramChatID)
}

func TestTelegramLinkService_Expired(t *testing.T) {
	clock := utils.NewFakeClock(t0)
	users := newMemUserRepo()
	users.byID["u1"] = &models.User{ID: "u1", Name: "alice"}
	s := NewTelegramLinkService(newMemLinks(users), clock, time.Minute, logging.Discard())
	ctx := context.Background()

	resp, err := s.RequestLink(ctx, "u1")
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	_, err = s.Link(ctx, resp.Code, 1)
	assert.ErrorIs(t, err, ErrInvalidLinkCode)
}
