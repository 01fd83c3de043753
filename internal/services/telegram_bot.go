package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"logingate/internal/logging"
)

// TelegramSender is the piece of *tgbotapi.BotAPI the messenger uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// WebhookSecretHeader carries the secret_token given to setWebhook on every
// update Telegram delivers.
const WebhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// NewTelegramBot connects to the Bot API. It calls getMe, so a bad token
// fails here. Every Bot API request is bounded by timeout when positive.
func NewTelegramBot(token string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	return tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
}

// WebhookRegistrar is the piece of *tgbotapi.BotAPI that calls raw Bot API
// methods.
type WebhookRegistrar interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// RegisterWebhook points the bot's updates at url. Telegram then sends
// secret in WebhookSecretHeader with each update.
func RegisterWebhook(bot WebhookRegistrar, url, secret string) error {
	if _, err := tgbotapi.NewWebhook(url); err != nil {
		return fmt.Errorf("telegram webhook url: %w", err)
	}
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	resp, err := bot.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("telegram setWebhook failed: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("telegram setWebhook rejected: %s", resp.Description)
	}
	return nil
}

// TelegramMessenger delivers direct messages to the chat a user has linked.
// The bot itself is the sending account.
type TelegramMessenger struct {
	bot    TelegramSender
	users  UserLookup
	logger logging.Logger
}

func NewTelegramMessenger(bot TelegramSender, users UserLookup, logger logging.Logger) *TelegramMessenger {
	return &TelegramMessenger{bot: bot, users: users, logger: logger}
}

func (t *TelegramMessenger) SendMessage(ctx context.Context, from, targetUserID, text string) error {
	user, err := t.users.GetByID(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("telegram lookup user %s: %w", targetUserID, err)
	}
	if user.TelegramChatID == 0 {
		t.logger.Info(ctx, "[tg][skip] user has no linked chat", "user_id", targetUserID)
		return nil
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	t.logger.Info(ctx, "[tg][send] ok", "user_id", targetUserID, "from", from)
	return nil
}
