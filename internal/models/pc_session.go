package models

import "time"

type SessionStatus int

const (
	SessionCreated   SessionStatus = 0
	SessionScanned   SessionStatus = 1
	SessionConfirmed SessionStatus = 2
)

// PCSession is a desktop login handshake addressed by an opaque token.
type PCSession struct {
	Token           string
	ClientID        string
	CreatedAt       time.Time
	Duration        time.Duration
	Status          SessionStatus
	ConfirmedUserID string
}

// Remaining is how long the session stays usable at now; zero or less means
// it has expired.
func (s *PCSession) Remaining(now time.Time) time.Duration {
	return s.Duration - now.Sub(s.CreatedAt)
}

func (s *PCSession) Expired(now time.Time) bool {
	return s.Remaining(now) <= 0
}

func (s *PCSession) View(now time.Time) SessionView {
	remaining := s.Remaining(now)
	if remaining < 0 {
		remaining = 0
	}
	return SessionView{
		Token:   s.Token,
		Expired: remaining.Milliseconds(),
		Status:  s.Status,
	}
}

// SessionView is what clients see of a PCSession. Expired carries the
// remaining lifetime in milliseconds.
type SessionView struct {
	Token   string        `json:"token"`
	Expired int64         `json:"expired"`
	Status  SessionStatus `json:"status"`
}

type CreateSessionRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Token    string `json:"token"`
}

type ConfirmSessionRequest struct {
	Token  string `json:"token" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
}
