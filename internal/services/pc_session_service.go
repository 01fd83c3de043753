package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"logingate/internal/logging"
	"logingate/internal/models"
	"logingate/internal/repositories"
	"logingate/internal/utils"
)

const DefaultSessionDuration = 300 * time.Second

// PCSessionService runs the desktop QR login handshake:
// Created -> Scanned -> Confirmed, then a token exchange.
type PCSessionService struct {
	sessions    repositories.PCSessionRepository
	tokens      TokenIssuer
	clock       utils.Clock
	logger      logging.Logger
	duration    time.Duration
	callTimeout time.Duration

	newToken func() string
}

func NewPCSessionService(
	sessions repositories.PCSessionRepository,
	tokens TokenIssuer,
	clock utils.Clock,
	logger logging.Logger,
	duration time.Duration,
	callTimeout time.Duration,
) *PCSessionService {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	return &PCSessionService{
		sessions:    sessions,
		tokens:      tokens,
		clock:       clock,
		logger:      logger,
		duration:    duration,
		callTimeout: callTimeout,
		newToken:    uuid.NewString,
	}
}

// CreateSession starts a handshake for clientID. An empty token gets a
// generated one; a caller supplied token replaces whatever session held it.
func (s *PCSessionService) CreateSession(ctx context.Context, clientID, token string) models.SessionView {
	if token == "" {
		token = s.newToken()
	}
	now := s.clock.Now()
	session := models.PCSession{
		Token:     token,
		ClientID:  clientID,
		CreatedAt: now,
		Duration:  s.duration,
		Status:    models.SessionCreated,
	}
	s.sessions.Put(session)
	s.logger.Info(ctx, "[session][create] ok", "client_id", clientID)
	return session.View(now)
}

// ScanSession marks the session as scanned by a mobile client. Scanning
// never moves a session backwards: a confirmed session stays confirmed.
func (s *PCSessionService) ScanSession(ctx context.Context, token string) (models.SessionView, error) {
	now := s.clock.Now()
	session, err := s.sessions.Update(token, func(cur *models.PCSession) error {
		if cur.Expired(now) {
			return models.ErrSessionExpired
		}
		if cur.Status < models.SessionScanned {
			cur.Status = models.SessionScanned
		}
		return nil
	})
	if err != nil {
		return models.SessionView{}, s.sessionError(ctx, "[session][scan]", err)
	}
	return session.View(now), nil
}

// ConfirmSession binds userID to the session.
//
// userID is taken as given; nothing checks that the caller really is that
// user. Concurrent confirms are applied one at a time and the last one wins.
func (s *PCSessionService) ConfirmSession(ctx context.Context, token, userID string) (models.SessionView, error) {
	now := s.clock.Now()
	session, err := s.sessions.Update(token, func(cur *models.PCSession) error {
		if cur.Expired(now) {
			return models.ErrSessionExpired
		}
		cur.Status = models.SessionConfirmed
		cur.ConfirmedUserID = userID
		return nil
	})
	if err != nil {
		return models.SessionView{}, s.sessionError(ctx, "[session][confirm]", err)
	}
	s.logger.Info(ctx, "[session][confirm] ok", "user_id", userID)
	return session.View(now), nil
}

// LoginWithSession exchanges a confirmed session for an identity token.
// Expiry is not checked here; a session confirmed in time can still be
// exchanged afterwards.
func (s *PCSessionService) LoginWithSession(ctx context.Context, token string) (*models.LoginResponse, error) {
	session, ok := s.sessions.Get(token)
	if !ok {
		return nil, models.ErrSessionExpired
	}

	switch session.Status {
	case models.SessionCreated:
		return nil, models.ErrSessionNotScanned
	case models.SessionScanned:
		return nil, models.ErrSessionNotConfirmed
	}

	var userToken string
	err := guard(ctx, s.logger, "[session][login]", func() error {
		callCtx, cancel := withTimeout(ctx, s.callTimeout)
		defer cancel()
		var err error
		userToken, err = s.tokens.GetUserToken(callCtx, session.ConfirmedUserID, session.ClientID)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "[session][login] get user token failure", "user_id", session.ConfirmedUserID, "err", err)
		return nil, models.ErrServerError
	}
	return &models.LoginResponse{UserID: session.ConfirmedUserID, Token: userToken}, nil
}

func (s *PCSessionService) sessionError(ctx context.Context, op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, models.ErrSessionExpired) {
		s.logger.Warn(ctx, op+" session expired")
		return models.ErrSessionExpired
	}
	s.logger.Error(ctx, op+" failed", "err", err)
	return models.ErrServerError
}
