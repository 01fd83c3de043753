package services

import (
	"context"
	"time"

	"logingate/internal/logging"
)

type WelcomeConfig struct {
	SystemAccount string
	NewUserText   string
	BackUserText  string
	Timeout       time.Duration
}

// WelcomeNotifier sends the post-login greeting. Failures are logged and
// never reach the caller. Notify waits at most Timeout; a transport that
// ignores its context finishes in the background.
type WelcomeNotifier struct {
	messenger Messenger
	logger    logging.Logger
	cfg       WelcomeConfig
}

func NewWelcomeNotifier(messenger Messenger, logger logging.Logger, cfg WelcomeConfig) *WelcomeNotifier {
	return &WelcomeNotifier{messenger: messenger, logger: logger, cfg: cfg}
}

func (n *WelcomeNotifier) Notify(ctx context.Context, userID string, isNewUser bool) {
	if n == nil || n.messenger == nil {
		return
	}
	text := n.cfg.BackUserText
	if isNewUser {
		text = n.cfg.NewUserText
	}
	if text == "" {
		return
	}

	callCtx, cancel := withTimeout(ctx, n.cfg.Timeout)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- guard(callCtx, n.logger, "[welcome][send]", func() error {
			return n.messenger.SendMessage(callCtx, n.cfg.SystemAccount, userID, text)
		})
	}()

	var err error
	select {
	case err = <-done:
	case <-callCtx.Done():
		err = callCtx.Err()
	}
	if err != nil {
		n.logger.Error(ctx, "[welcome][send] send message error", "user_id", userID, "err", err)
		return
	}
	n.logger.Info(ctx, "[welcome][send] send message success", "user_id", userID, "new_user", isNewUser)
}
