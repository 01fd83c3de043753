package models

import "time"

// User is an identity directory entry.
type User struct {
	ID             string    `json:"userId"`
	Name           string    `json:"name"`
	DisplayName    string    `json:"displayName"`
	Mobile         string    `json:"mobile,omitempty"`
	Email          string    `json:"email,omitempty"`
	PasswordHash   string    `json:"-"` // не отдаём наружу
	Forbidden      bool      `json:"-"`
	TelegramChatID int64     `json:"-"`
	CreatedAt      time.Time `json:"-"`
}

type LoginResponse struct {
	UserID   string `json:"userId"`
	Token    string `json:"token"`
	Register bool   `json:"register"`
}

type SendCodeRequest struct {
	Mobile string `json:"mobile"`
}

type CodeLoginRequest struct {
	Mobile   string `json:"mobile"`
	Code     string `json:"code"`
	ClientID string `json:"clientId"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	ClientID string `json:"clientId"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type CreateUserResponse struct {
	UserID string `json:"userId"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type TelegramLinkResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
