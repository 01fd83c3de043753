package services

import (
	"context"

	"logingate/internal/models"
)

// SMSGateway delivers verification codes. An error returned as a
// *models.CodeError is surfaced to the caller unchanged; anything else
// becomes a server error.
type SMSGateway interface {
	SendCode(ctx context.Context, mobile, code string) error
}

// Identity is the identity directory: users, credentials and tokens.
// Expected outcomes come back as *models.CodeError (ErrUserNotExist,
// ErrUserForbidden, ErrPasswordIncorrect, ErrUserAlreadyExists).
type Identity interface {
	CheckPasswordLogin(ctx context.Context, name, password string) error
	GetUserByName(ctx context.Context, name string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User, password string) (string, error)
	GetUserToken(ctx context.Context, userID, clientID string) (string, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// TokenIssuer is the part of Identity the QR session flow needs.
type TokenIssuer interface {
	GetUserToken(ctx context.Context, userID, clientID string) (string, error)
}

// Messenger sends a direct message from a system account to a user.
type Messenger interface {
	SendMessage(ctx context.Context, from, targetUserID, text string) error
}

// UserLookup resolves user ids for messengers that need contact details.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
