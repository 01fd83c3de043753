package services

import (
	"context"

	"logingate/internal/logging"
)

// LogMessenger only logs messages. It is the dry-run messaging driver.
type LogMessenger struct {
	logger logging.Logger
}

func NewLogMessenger(logger logging.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

func (m *LogMessenger) SendMessage(ctx context.Context, from, targetUserID, text string) error {
	m.logger.Info(ctx, "[messaging][dry-run] direct message", "from", from, "to", targetUserID, "text", text)
	return nil
}
