package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"logingate/internal/models"
)

type Authenticator interface {
	LoginWithCode(ctx context.Context, mobile, code, clientID string) (*models.LoginResponse, error)
	LoginWithPassword(ctx context.Context, name, password, clientID string) (*models.LoginResponse, error)
}

type AuthHandler struct {
	login Authenticator
}

func NewAuthHandler(login Authenticator) *AuthHandler {
	return &AuthHandler{login: login}
}

// @Summary      Login by SMS code
// @Description  Verifies the code and returns an identity token. Unknown mobiles are registered.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.CodeLoginRequest  true  "Mobile, code and client id"
// @Success      200    {object}  models.RestResult{result=models.LoginResponse}
// @Failure      400    {object}  models.RestResult
// @Failure      500    {object}  models.RestResult
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.CodeLoginRequest
	if !bindJSON(c, "[auth][login]", &req) {
		return
	}
	resp, err := h.login.LoginWithCode(c.Request.Context(), req.Mobile, req.Code, req.ClientID)
	respond(c, resp, err)
}

// @Summary      Login by password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Name, password and client id"
// @Success      200    {object}  models.RestResult{result=models.LoginResponse}
// @Failure      400    {object}  models.RestResult
// @Failure      401    {object}  models.RestResult
// @Failure      403    {object}  models.RestResult
// @Failure      404    {object}  models.RestResult
// @Failure      500    {object}  models.RestResult
// @Router       /pwd_login [post]
func (h *AuthHandler) PasswordLogin(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, "[auth][pwd_login]", &req) {
		return
	}
	resp, err := h.login.LoginWithPassword(c.Request.Context(), req.Name, req.Password, req.ClientID)
	respond(c, resp, err)
}
