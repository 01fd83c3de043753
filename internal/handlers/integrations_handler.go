package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"logingate/internal/middleware"
	"logingate/internal/models"
	"logingate/internal/services"
)

type TelegramLinks interface {
	RequestLink(ctx context.Context, userID string) (*models.TelegramLinkResponse, error)
	Link(ctx context.Context, code string, chatID int64) (string, error)
}

// IntegrationsHandler links Telegram chats to users. Bot may be nil, then
// the webhook still links but sends no replies. When Secret is set every
// update must carry it in the secret token header.
type IntegrationsHandler struct {
	Links  TelegramLinks
	Bot    services.TelegramSender
	Secret string
}

func NewIntegrationsHandler(links TelegramLinks, bot services.TelegramSender, secret string) *IntegrationsHandler {
	return &IntegrationsHandler{Links: links, Bot: bot, Secret: secret}
}

// Webhook receives Telegram updates. Authentic updates are always answered
// 200 so Telegram does not redeliver.
func (h *IntegrationsHandler) Webhook(c *gin.Context) {
	if h.Secret != "" {
		got := c.GetHeader(services.WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
			log.Printf("[tg][webhook] rejected update with bad secret token from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
	}

	var up tgbotapi.Update
	if err := c.ShouldBindJSON(&up); err != nil || up.Message == nil || up.Message.Chat == nil {
		if err != nil {
			log.Printf("[tg][webhook] bind json error: %v", err)
		}
		c.Status(http.StatusOK)
		return
	}

	text := strings.TrimSpace(up.Message.Text)
	chatID := up.Message.Chat.ID

	switch {
	case strings.HasPrefix(text, "/start"):
		h.reply(chatID, "Hi! To link your account send:\n/link <code>")

	case strings.HasPrefix(text, "/link"):
		raw := strings.TrimSpace(strings.TrimPrefix(text, "/link"))
		userID, err := h.Links.Link(c.Request.Context(), raw, chatID)
		switch {
		case errors.Is(err, services.ErrInvalidLinkCode):
			log.Printf("[tg][webhook] bad link code from chatID=%d", chatID)
			h.reply(chatID, "The code is invalid or expired. Request a new one.")
		case err != nil:
			log.Printf("[tg][webhook] link failed: chatID=%d err=%v", chatID, err)
			h.reply(chatID, "Could not link the account, try again later.")
		default:
			log.Printf("[tg][webhook] linked userID=%s chatID=%d", userID, chatID)
			h.reply(chatID, "Done! Your account is linked.")
		}

	default:
		h.reply(chatID, "Unknown command. Use /link <code>.")
	}

	c.Status(http.StatusOK)
}

func (h *IntegrationsHandler) reply(chatID int64, text string) {
	if h.Bot == nil {
		return
	}
	if _, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("[tg][webhook] reply failed: chatID=%d err=%v", chatID, err)
	}
}

// @Summary      Request a Telegram link code
// @Description  Returns a one-time code to send to the bot as "/link <code>".
// @Tags         Integrations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.RestResult{result=models.TelegramLinkResponse}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  models.RestResult
// @Router       /integrations/telegram/request-link [post]
func (h *IntegrationsHandler) RequestTelegramLink(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	resp, err := h.Links.RequestLink(c.Request.Context(), userID)
	respond(c, resp, err)
}
