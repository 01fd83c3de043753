package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"logingate/internal/logging"
	"logingate/internal/models"
	"logingate/internal/utils"
)

// CodeVerifier checks a submitted login code for a mobile.
type CodeVerifier interface {
	VerifyCode(ctx context.Context, mobile, code string) error
}

// LoginService turns verified codes and passwords into identity tokens.
type LoginService struct {
	codes       CodeVerifier
	identity    Identity
	welcome     *WelcomeNotifier
	logger      logging.Logger
	callTimeout time.Duration
}

func NewLoginService(codes CodeVerifier, identity Identity, welcome *WelcomeNotifier, logger logging.Logger, callTimeout time.Duration) *LoginService {
	return &LoginService{
		codes:       codes,
		identity:    identity,
		welcome:     welcome,
		logger:      logger,
		callTimeout: callTimeout,
	}
}

// LoginWithCode logs in by mobile and code, creating the user on first login.
// The user is keyed by the normalized mobile.
func (s *LoginService) LoginWithCode(ctx context.Context, mobile, code, clientID string) (*models.LoginResponse, error) {
	mobile = utils.NormalizeMobile(mobile)
	if err := s.codes.VerifyCode(ctx, mobile, code); err != nil {
		return nil, err
	}

	var (
		user      *models.User
		token     string
		isNewUser bool
	)
	err := s.call(ctx, "[login][code]", func(ctx context.Context) error {
		var err error
		user, err = s.identity.GetUserByName(ctx, mobile)
		switch {
		case errors.Is(err, models.ErrUserNotExist):
			s.logger.Info(ctx, "[login][code] user not exist, try to create", "mobile", mobile)
			user = &models.User{Name: mobile, DisplayName: mobile, Mobile: mobile}
			id, err := s.identity.CreateUser(ctx, user, "")
			if errors.Is(err, models.ErrUserAlreadyExists) {
				// a concurrent first login created it
				s.logger.Info(ctx, "[login][code] user created concurrently", "mobile", mobile)
				if user, err = s.identity.GetUserByName(ctx, mobile); err != nil {
					s.logger.Error(ctx, "[login][code] get user failure", "mobile", mobile, "err", err)
					return models.ErrServerError
				}
				break
			}
			if err != nil {
				s.logger.Error(ctx, "[login][code] create user failure", "mobile", mobile, "err", err)
				return models.ErrServerError
			}
			user.ID = id
			isNewUser = true
		case err != nil:
			s.logger.Error(ctx, "[login][code] get user failure", "mobile", mobile, "err", err)
			return models.ErrServerError
		}

		token, err = s.identity.GetUserToken(ctx, user.ID, clientID)
		if err != nil {
			s.logger.Error(ctx, "[login][code] get user token failure", "user_id", user.ID, "err", err)
			return models.ErrServerError
		}
		return nil
	})
	if err != nil {
		return nil, models.ErrServerError
	}

	s.welcome.Notify(ctx, user.ID, isNewUser)
	s.logger.Info(ctx, "[login][code] success", "user_id", user.ID, "new_user", isNewUser)
	return &models.LoginResponse{UserID: user.ID, Token: token, Register: isNewUser}, nil
}

// LoginWithPassword logs in an existing user by name and password.
func (s *LoginService) LoginWithPassword(ctx context.Context, name, password, clientID string) (*models.LoginResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		s.logger.Warn(ctx, "[login][pwd] name or password is empty")
		return nil, models.ErrEmptyName
	}

	var (
		user  *models.User
		token string
	)
	err := s.call(ctx, "[login][pwd]", func(ctx context.Context) error {
		if err := s.identity.CheckPasswordLogin(ctx, name, password); err != nil {
			s.logger.Warn(ctx, "[login][pwd] check password failed", "name", name, "err", err)
			return passThrough(err, models.ErrUserNotExist, models.ErrUserForbidden, models.ErrPasswordIncorrect)
		}

		var err error
		user, err = s.identity.GetUserByName(ctx, name)
		if err != nil {
			s.logger.Error(ctx, "[login][pwd] get user failure", "name", name, "err", err)
			return passThrough(err, models.ErrUserNotExist)
		}

		token, err = s.identity.GetUserToken(ctx, user.ID, clientID)
		if err != nil {
			s.logger.Error(ctx, "[login][pwd] get user token failure", "user_id", user.ID, "err", err)
			return models.ErrServerError
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.welcome.Notify(ctx, user.ID, false)
	return &models.LoginResponse{UserID: user.ID, Token: token, Register: false}, nil
}

// CreateUser registers a password user.
func (s *LoginService) CreateUser(ctx context.Context, name, password string) (*models.CreateUserResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, models.ErrEmptyName
	}

	var userID string
	err := s.call(ctx, "[user][create]", func(ctx context.Context) error {
		_, err := s.identity.GetUserByName(ctx, name)
		switch {
		case err == nil:
			s.logger.Warn(ctx, "[user][create] user already exists", "name", name)
			return models.ErrUserAlreadyExists
		case !errors.Is(err, models.ErrUserNotExist):
			s.logger.Error(ctx, "[user][create] get user failure", "name", name, "err", err)
			return models.ErrServerError
		}

		userID, err = s.identity.CreateUser(ctx, &models.User{Name: name, DisplayName: name}, password)
		if err != nil {
			s.logger.Error(ctx, "[user][create] create user failure", "name", name, "err", err)
			return passThrough(err, models.ErrUserAlreadyExists)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.CreateUserResponse{UserID: userID}, nil
}

// UpdatePassword changes the password of userID after checking the old one.
func (s *LoginService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if userID == "" || newPassword == "" {
		return models.ErrEmptyName
	}
	return s.call(ctx, "[user][update_pwd]", func(ctx context.Context) error {
		if err := s.identity.UpdatePassword(ctx, userID, oldPassword, newPassword); err != nil {
			s.logger.Warn(ctx, "[user][update_pwd] failed", "user_id", userID, "err", err)
			return passThrough(err, models.ErrPasswordIncorrect, models.ErrUserNotExist)
		}
		return nil
	})
}

func (s *LoginService) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return guard(ctx, s.logger, op, func() error {
		callCtx, cancel := withTimeout(ctx, s.callTimeout)
		defer cancel()
		return fn(callCtx)
	})
}
