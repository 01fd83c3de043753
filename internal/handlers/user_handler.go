package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"logingate/internal/middleware"
	"logingate/internal/models"
)

type UserManager interface {
	CreateUser(ctx context.Context, name, password string) (*models.CreateUserResponse, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type UserHandler struct {
	users UserManager
}

func NewUserHandler(users UserManager) *UserHandler {
	return &UserHandler{users: users}
}

// @Summary      Create password user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      models.CreateUserRequest  true  "Name and password"
// @Success      200   {object}  models.RestResult{result=models.CreateUserResponse}
// @Failure      400   {object}  models.RestResult
// @Failure      409   {object}  models.RestResult
// @Failure      500   {object}  models.RestResult
// @Router       /user/create [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, "[user][create]", &req) {
		return
	}
	resp, err := h.users.CreateUser(c.Request.Context(), req.Name, req.Password)
	respond(c, resp, err)
}

// @Summary      Change own password
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        passwords  body      models.UpdatePasswordRequest  true  "Old and new password"
// @Success      200        {object}  models.RestResult
// @Failure      400        {object}  models.RestResult
// @Failure      401        {object}  models.RestResult
// @Failure      500        {object}  models.RestResult
// @Router       /user/update_pwd [post]
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req models.UpdatePasswordRequest
	if !bindJSON(c, "[user][update_pwd]", &req) {
		return
	}
	respond(c, nil, h.users.UpdatePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword))
}
