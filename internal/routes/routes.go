package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"logingate/internal/handlers"
	"logingate/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	smsHandler *handlers.SMSHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	sessionHandler *handlers.SessionHandler,
	integrationsHandler *handlers.IntegrationsHandler, // может быть nil
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ---- public
	r.POST("/send_code", smsHandler.SendCode)
	r.POST("/login", authHandler.Login)
	r.POST("/pwd_login", authHandler.PasswordLogin)
	r.POST("/user/create", userHandler.CreateUser)

	// desktop QR login
	r.POST("/pc_session", sessionHandler.CreateSession)
	r.POST("/session_login/:token", sessionHandler.LoginWithSession)
	r.POST("/scan_pc/:token", sessionHandler.ScanSession)
	r.POST("/confirm_pc", sessionHandler.ConfirmSession)

	if integrationsHandler != nil {
		r.POST("/integrations/telegram/webhook", integrationsHandler.Webhook)
	}

	// ---- protected
	authed := r.Group("/", middleware.AuthMiddleware(jwtSecret))
	authed.POST("/user/update_pwd", userHandler.UpdatePassword)
	if integrationsHandler != nil {
		authed.POST("/integrations/telegram/request-link", integrationsHandler.RequestTelegramLink)
	}

	return r
}
