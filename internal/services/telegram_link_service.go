package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"logingate/internal/logging"
	"logingate/internal/models"
	"logingate/internal/repositories"
	"logingate/internal/utils"
)

var ErrInvalidLinkCode = errors.New("invalid or expired link code")

// TelegramLinkService binds a user's Telegram chat so the telegram
// messenger can reach them. A signed in user requests a code and sends
// "/link <code>" to the bot.
type TelegramLinkService struct {
	links  repositories.TelegramLinkRepository
	clock  utils.Clock
	ttl    time.Duration
	logger logging.Logger
}

func NewTelegramLinkService(links repositories.TelegramLinkRepository, clock utils.Clock, ttl time.Duration, logger logging.Logger) *TelegramLinkService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TelegramLinkService{links: links, clock: clock, ttl: ttl, logger: logger}
}

func (s *TelegramLinkService) RequestLink(ctx context.Context, userID string) (*models.TelegramLinkResponse, error) {
	raw, err := utils.RandomHex(16)
	if err != nil {
		s.logger.Error(ctx, "[tg][link] generate code failed", "err", err)
		return nil, models.ErrServerError
	}
	link := repositories.TelegramLink{
		Code:      strings.ToUpper(raw),
		UserID:    userID,
		ExpiresAt: s.clock.Now().Add(s.ttl),
	}
	if err := s.links.Issue(ctx, link); err != nil {
		s.logger.Error(ctx, "[tg][link] create failed", "user_id", userID, "err", err)
		return nil, models.ErrServerError
	}
	s.logger.Info(ctx, "[tg][link] code issued", "user_id", userID)
	return &models.TelegramLinkResponse{Code: link.Code, ExpiresAt: link.ExpiresAt}, nil
}

// Link redeems code and stores chatID on its user. A failed link leaves the
// code usable, so the user can resend it.
func (s *TelegramLinkService) Link(ctx context.Context, rawCode string, chatID int64) (string, error) {
	code, ok := NormalizeLinkCode(rawCode)
	if !ok {
		return "", ErrInvalidLinkCode
	}
	userID, err := s.links.Redeem(ctx, code, chatID, s.clock.Now())
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrInvalidLinkCode
	}
	if err != nil {
		s.logger.Error(ctx, "[tg][link] redeem failed", "chat_id", chatID, "err", err)
		return "", err
	}
	s.logger.Info(ctx, "[tg][link] chat linked", "user_id", userID, "chat_id", chatID)
	return userID, nil
}

// NormalizeLinkCode strips quoting and separators people paste along with
// the code. A valid code is 32 hex digits.
func NormalizeLinkCode(s string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if unicode.Is(unicode.Hex_Digit, r) {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) != 32 {
		return "", false
	}
	return code, true
}
