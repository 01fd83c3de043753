package services

import (
	"context"
	"crypto/subtle"
	"time"

	"logingate/internal/logging"
	"logingate/internal/models"
	"logingate/internal/repositories"
	"logingate/internal/utils"
)

const (
	defaultResendCooldown = 60 * time.Second
	defaultDailyLimit     = 10
	defaultQuotaWindow    = 24 * time.Hour
	defaultCodeTTL        = 5 * time.Minute
	defaultCodeLength     = 4
)

type SMSConfig struct {
	ResendCooldown time.Duration
	DailyLimit     int
	QuotaWindow    time.Duration
	CodeTTL        time.Duration
	CodeLength     int
	// SuperCode, when set, is accepted for any mobile and skips the record check.
	SuperCode   string
	CallTimeout time.Duration
}

func (c SMSConfig) withDefaults() SMSConfig {
	if c.ResendCooldown <= 0 {
		c.ResendCooldown = defaultResendCooldown
	}
	if c.DailyLimit <= 0 {
		c.DailyLimit = defaultDailyLimit
	}
	if c.QuotaWindow <= 0 {
		c.QuotaWindow = defaultQuotaWindow
	}
	if c.CodeTTL <= 0 {
		c.CodeTTL = defaultCodeTTL
	}
	if c.CodeLength <= 0 {
		c.CodeLength = defaultCodeLength
	}
	return c
}

// SMSService issues login codes and checks them back.
type SMSService struct {
	records repositories.CodeRecordRepository
	quotas  repositories.QuotaRepository
	gateway SMSGateway
	mobiles *utils.MobileValidator
	clock   utils.Clock
	logger  logging.Logger
	locks   *utils.KeyedMutex
	cfg     SMSConfig

	generateCode func(n int) (string, error)
}

func NewSMSService(
	records repositories.CodeRecordRepository,
	quotas repositories.QuotaRepository,
	gateway SMSGateway,
	mobiles *utils.MobileValidator,
	clock utils.Clock,
	logger logging.Logger,
	cfg SMSConfig,
) *SMSService {
	return &SMSService{
		records:      records,
		quotas:       quotas,
		gateway:      gateway,
		mobiles:      mobiles,
		clock:        clock,
		logger:       logger,
		locks:        utils.NewKeyedMutex(),
		cfg:          cfg.withDefaults(),
		generateCode: utils.RandomDigits,
	}
}

// RequestCode sends a fresh code to mobile. Requests for one mobile are
// serialised, so the cooldown check, the quota update and the record write
// see each other.
func (s *SMSService) RequestCode(ctx context.Context, mobile string) error {
	mobile = utils.NormalizeMobile(mobile)
	if !s.mobiles.IsMobile(mobile) {
		s.logger.Warn(ctx, "[sms][send] not valid mobile", "mobile", mobile)
		return models.ErrInvalidMobile
	}

	unlock := s.locks.Lock(mobile)
	defer unlock()

	now := s.clock.Now()
	if rec, ok := s.records.Get(mobile); ok && now.Sub(rec.IssuedAt) < s.cfg.ResendCooldown {
		s.logger.Warn(ctx, "[sms][send] over frequency", "mobile", mobile, "issued_at", rec.IssuedAt, "now", now)
		return models.ErrOverFrequency
	}

	if !s.takeQuota(mobile, now) {
		s.logger.Warn(ctx, "[sms][send] daily quota exhausted", "mobile", mobile, "limit", s.cfg.DailyLimit)
		return models.ErrOverFrequency
	}

	code, err := s.generateCode(s.cfg.CodeLength)
	if err != nil {
		s.logger.Error(ctx, "[sms][send] generate code failed", "err", err)
		return models.ErrServerError
	}

	err = guard(ctx, s.logger, "[sms][send]", func() error {
		callCtx, cancel := withTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
		return s.gateway.SendCode(callCtx, mobile, code)
	})
	if err != nil {
		s.logger.Error(ctx, "[sms][send] gateway failed", "mobile", mobile, "err", err)
		if models.CodeOf(err) != models.CodeServerError {
			return err
		}
		return models.ErrServerError
	}

	s.records.Put(models.CodeRecord{Mobile: mobile, Code: code, IssuedAt: now})
	s.logger.Info(ctx, "[sms][send] ok", "mobile", mobile)
	return nil
}

// takeQuota counts one send against the rolling window. A rejected send
// leaves the counter as it was.
func (s *SMSService) takeQuota(mobile string, now time.Time) bool {
	accepted := false
	s.quotas.Update(mobile, func(cur models.QuotaCounter, ok bool) (models.QuotaCounter, bool) {
		if !ok || now.Sub(cur.WindowStart) > s.cfg.QuotaWindow {
			accepted = true
			return models.QuotaCounter{Mobile: mobile, Count: 1, WindowStart: now}, true
		}
		if cur.Count+1 > s.cfg.DailyLimit {
			return cur, false
		}
		accepted = true
		cur.Count++
		return cur, true
	})
	return accepted
}

// VerifyCode checks a submitted code. The record is left in place, so the
// same code keeps working until it expires.
func (s *SMSService) VerifyCode(ctx context.Context, mobile, code string) error {
	mobile = utils.NormalizeMobile(mobile)
	if s.cfg.SuperCode != "" && code == s.cfg.SuperCode {
		s.logger.Warn(ctx, "[sms][verify] super code used", "mobile", mobile)
		return nil
	}

	rec, ok := s.records.Get(mobile)
	if !ok || subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		s.logger.Warn(ctx, "[sms][verify] code incorrect", "mobile", mobile)
		return models.ErrCodeIncorrect
	}
	now := s.clock.Now()
	if now.Sub(rec.IssuedAt) > s.cfg.CodeTTL {
		s.logger.Warn(ctx, "[sms][verify] code expired", "mobile", mobile, "issued_at", rec.IssuedAt, "now", now)
		return models.ErrCodeExpired
	}
	return nil
}
