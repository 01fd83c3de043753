package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"logingate/internal/models"
)

type CodeSender interface {
	RequestCode(ctx context.Context, mobile string) error
}

type SMSHandler struct {
	Service CodeSender
}

func NewSMSHandler(service CodeSender) *SMSHandler {
	return &SMSHandler{Service: service}
}

// SendCode godoc
// @Summary      Send login code
// @Description  Sends a verification code by SMS. One code per minute and ten per day for a mobile.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.SendCodeRequest  true  "Mobile number"
// @Success      200      {object}  models.RestResult
// @Failure      400      {object}  models.RestResult
// @Failure      429      {object}  models.RestResult
// @Failure      500      {object}  models.RestResult
// @Router       /send_code [post]
func (h *SMSHandler) SendCode(c *gin.Context) {
	var req models.SendCodeRequest
	if !bindJSON(c, "[sms][send]", &req) {
		return
	}
	respond(c, nil, h.Service.RequestCode(c.Request.Context(), req.Mobile))
}
