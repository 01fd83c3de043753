package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"logingate/internal/models"
)

type SessionFlow interface {
	CreateSession(ctx context.Context, clientID, token string) models.SessionView
	ScanSession(ctx context.Context, token string) (models.SessionView, error)
	ConfirmSession(ctx context.Context, token, userID string) (models.SessionView, error)
	LoginWithSession(ctx context.Context, token string) (*models.LoginResponse, error)
}

// SessionHandler serves the desktop QR login endpoints.
type SessionHandler struct {
	sessions SessionFlow
}

func NewSessionHandler(sessions SessionFlow) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// @Summary      Start desktop QR login
// @Tags         PC session
// @Accept       json
// @Produce      json
// @Param        session  body      models.CreateSessionRequest  true  "Desktop client id and optional token"
// @Success      200      {object}  models.RestResult{result=models.SessionView}
// @Failure      400      {object}  map[string]string
// @Router       /pc_session [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if !bindJSON(c, "[session][create]", &req) {
		return
	}
	respond(c, h.sessions.CreateSession(c.Request.Context(), req.ClientID, req.Token), nil)
}

// @Summary      Exchange a confirmed session for a token
// @Tags         PC session
// @Produce      json
// @Param        token  path      string  true  "Session token"
// @Success      200    {object}  models.RestResult{result=models.LoginResponse}
// @Failure      400    {object}  models.RestResult
// @Failure      410    {object}  models.RestResult
// @Failure      500    {object}  models.RestResult
// @Router       /session_login/{token} [post]
func (h *SessionHandler) LoginWithSession(c *gin.Context) {
	resp, err := h.sessions.LoginWithSession(c.Request.Context(), c.Param("token"))
	respond(c, resp, err)
}

// @Summary      Mark a session as scanned
// @Tags         PC session
// @Produce      json
// @Param        token  path      string  true  "Session token"
// @Success      200    {object}  models.RestResult{result=models.SessionView}
// @Failure      410    {object}  models.RestResult
// @Router       /scan_pc/{token} [post]
func (h *SessionHandler) ScanSession(c *gin.Context) {
	view, err := h.sessions.ScanSession(c.Request.Context(), c.Param("token"))
	respond(c, view, err)
}

// @Summary      Confirm a scanned session for a user
// @Description  The user id is taken as given.
// @Tags         PC session
// @Accept       json
// @Produce      json
// @Param        confirm  body      models.ConfirmSessionRequest  true  "Session token and user id"
// @Success      200      {object}  models.RestResult{result=models.SessionView}
// @Failure      410      {object}  models.RestResult
// @Router       /confirm_pc [post]
func (h *SessionHandler) ConfirmSession(c *gin.Context) {
	var req models.ConfirmSessionRequest
	if !bindJSON(c, "[session][confirm]", &req) {
		return
	}
	view, err := h.sessions.ConfirmSession(c.Request.Context(), req.Token, req.UserID)
	respond(c, view, err)
}
