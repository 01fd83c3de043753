package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"logingate/internal/models"
	"logingate/internal/repositories"
	"logingate/internal/utils"
)

// IdentityService is the Postgres backed identity directory. Tokens are
// HS256 JWTs bound to a user and a client id.
type IdentityService struct {
	repo      repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	clock     utils.Clock
}

func NewIdentityService(repo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, clock utils.Clock) *IdentityService {
	return &IdentityService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		clock:     clock,
	}
}

func (s *IdentityService) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *IdentityService) CheckPasswordLogin(ctx context.Context, name, password string) error {
	user, err := s.GetUserByName(ctx, name)
	if err != nil {
		return err
	}
	if user.Forbidden {
		return models.ErrUserForbidden
	}
	return checkPassword(user.PasswordHash, password)
}

func checkPassword(hash, password string) error {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return models.ErrPasswordIncorrect
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.ErrPasswordIncorrect
	}
	return nil
}

func (s *IdentityService) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	user, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrUserNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("get user by name: %w", err)
	}
	return user, nil
}

// CreateUser stores user under a fresh id and returns it. password may be
// empty for users that only log in by code.
func (s *IdentityService) CreateUser(ctx context.Context, user *models.User, password string) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Name
	}
	if password != "" {
		hash, err := s.HashPassword(password)
		if err != nil {
			return "", fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return "", models.ErrUserAlreadyExists
		}
		return "", err
	}
	return user.ID, nil
}

func (s *IdentityService) GetUserToken(ctx context.Context, userID, clientID string) (string, error) {
	if _, err := s.getByID(ctx, userID); err != nil {
		return "", err
	}
	return utils.GenerateToken(userID, clientID, s.jwtSecret, s.clock.Now(), s.tokenTTL)
}

func (s *IdentityService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.getByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := checkPassword(user.PasswordHash, oldPassword); err != nil {
		return err
	}
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

func (s *IdentityService) getByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.ErrUserNotExist
	}
	return user, err
}
