package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"

	_ "logingate/docs"
	"logingate/internal/config"
	"logingate/internal/handlers"
	"logingate/internal/logging"
	"logingate/internal/middleware"
	"logingate/internal/repositories"
	"logingate/internal/routes"
	"logingate/internal/services"
	"logingate/internal/utils"
)

type App struct {
	cfg    *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
	stores map[string]repositories.Expirer
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.New(cfg.Server.LogLevel)
	clock := utils.SystemClock()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repositories.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	linkRepo := repositories.NewTelegramLinkRepository(db)
	codeRepo := repositories.NewCodeRecordRepository(cfg.Eviction.MaxAge)
	quotaRepo := repositories.NewQuotaRepository(cfg.Eviction.MaxAge)
	sessionRepo := repositories.NewPCSessionRepository(cfg.Eviction.MaxAge)

	// === Collaborators ===
	identity := services.NewIdentityService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenTTL, clock)

	mobiles, err := utils.NewMobileValidator(cfg.SMS.MobilePattern)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sms.mobile_pattern: %w", err)
	}
	mobizon := utils.NewClientWithOptions(cfg.Mobizon.APIKey, cfg.Mobizon.SenderID, cfg.Mobizon.DryRun)
	if cfg.Mobizon.BaseURL != "" {
		mobizon.BaseURL = cfg.Mobizon.BaseURL
	}
	if cfg.Mobizon.Template != "" {
		mobizon.Template = cfg.Mobizon.Template
	}
	mobizon.HTTP = &http.Client{Timeout: cfg.Mobizon.Timeout}

	var bot *tgbotapi.BotAPI
	if cfg.Telegram.BotToken != "" {
		if bot, err = services.NewTelegramBot(cfg.Telegram.BotToken, cfg.Messaging.Timeout); err != nil {
			db.Close()
			return nil, fmt.Errorf("telegram bot: %w", err)
		}
		if cfg.Telegram.WebhookURL != "" {
			if err := services.RegisterWebhook(bot, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
				db.Close()
				return nil, err
			}
			logger.Info(ctx, "[app][init] telegram webhook registered", "url", cfg.Telegram.WebhookURL)
		}
	}
	messenger, err := newMessenger(cfg, bot, userRepo, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	welcome := services.NewWelcomeNotifier(messenger, logger, services.WelcomeConfig{
		SystemAccount: cfg.Messaging.SystemAccount,
		NewUserText:   cfg.Messaging.WelcomeNewUser,
		BackUserText:  cfg.Messaging.WelcomeBackUser,
		Timeout:       cfg.Messaging.Timeout,
	})

	// === Services ===
	smsService := services.NewSMSService(codeRepo, quotaRepo, mobizon, mobiles, clock, logger, services.SMSConfig{
		ResendCooldown: cfg.SMS.ResendCooldown,
		DailyLimit:     cfg.SMS.DailyLimit,
		QuotaWindow:    cfg.SMS.QuotaWindow,
		CodeTTL:        cfg.SMS.CodeTTL,
		CodeLength:     cfg.SMS.CodeLength,
		SuperCode:      cfg.SMS.SuperCode,
		CallTimeout:    cfg.CallTimeout,
	})
	loginService := services.NewLoginService(smsService, identity, welcome, logger, cfg.CallTimeout)
	sessionService := services.NewPCSessionService(sessionRepo, identity, clock, logger, cfg.Session.Duration, cfg.CallTimeout)
	linkService := services.NewTelegramLinkService(linkRepo, clock, cfg.Telegram.LinkTTL, logger)

	// === Handlers ===
	var integrationsHandler *handlers.IntegrationsHandler
	if bot != nil {
		integrationsHandler = handlers.NewIntegrationsHandler(linkService, bot, cfg.Telegram.WebhookSecret)
	}

	router := NewRouter(
		[]byte(cfg.JWT.Secret),
		handlers.NewSMSHandler(smsService),
		handlers.NewAuthHandler(loginService),
		handlers.NewUserHandler(loginService),
		handlers.NewSessionHandler(sessionService),
		integrationsHandler,
	)

	// without a max age nothing expires, so there is no loop to run
	var stores map[string]repositories.Expirer
	if cfg.Eviction.MaxAge > 0 {
		stores = map[string]repositories.Expirer{
			"code_records": codeRepo,
			"quotas":       quotaRepo,
			"pc_sessions":  sessionRepo,
		}
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		db:     db,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		stores: stores,
	}, nil
}

// NewRouter builds the gin engine. integrationsHandler may be nil.
func NewRouter(
	jwtSecret []byte,
	smsHandler *handlers.SMSHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	sessionHandler *handlers.SessionHandler,
	integrationsHandler *handlers.IntegrationsHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	return routes.SetupRoutes(router, jwtSecret, smsHandler, authHandler, userHandler, sessionHandler, integrationsHandler)
}

// newMessenger picks the welcome message driver. bot is only needed for
// the telegram driver.
func newMessenger(cfg *config.Config, bot *tgbotapi.BotAPI, users services.UserLookup, logger logging.Logger) (services.Messenger, error) {
	switch cfg.Messaging.Driver {
	case "telegram":
		if bot == nil {
			return nil, errors.New("telegram driver needs telegram.bot_token")
		}
		return services.NewTelegramMessenger(bot, users, logger), nil
	case "email":
		dialer := services.NewMailDialer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPUser, cfg.Email.SMTPPassword)
		return services.NewEmailMessenger(dialer, cfg.Email.FromEmail, cfg.Email.Subject, users, logger), nil
	case "log", "":
		return services.NewLogMessenger(logger), nil
	default:
		return nil, fmt.Errorf("unknown messaging driver %q", cfg.Messaging.Driver)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a signal arrives, then shuts
// the server down and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	if len(app.stores) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repositories.RunExpiry(ctx, app.logger, app.stores)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "[app][run] listening", "addr", app.server.Addr)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = err
		cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "[app][shutdown] http server", "err", err)
	}
	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "[app][shutdown] db close", "err", err)
	}
	app.logger.Info(ctx, "[app][shutdown] done")
	return runErr
}
