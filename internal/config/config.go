package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port            int           `yaml:"port" env:"LOGINGATE_PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"LOGINGATE_SHUTDOWN_TIMEOUT"`
	LogLevel        string        `yaml:"log_level" env:"LOGINGATE_LOG_LEVEL"`
}

type DatabaseConfig struct {
	DSN string `yaml:"url" env:"LOGINGATE_DATABASE_URL"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret" env:"LOGINGATE_JWT_SECRET"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"LOGINGATE_JWT_TOKEN_TTL"`
}

type SMSConfig struct {
	SuperCode      string        `yaml:"super_code" env:"LOGINGATE_SMS_SUPER_CODE"`
	ResendCooldown time.Duration `yaml:"resend_cooldown" env:"LOGINGATE_SMS_RESEND_COOLDOWN"`
	DailyLimit     int           `yaml:"daily_limit" env:"LOGINGATE_SMS_DAILY_LIMIT"`
	QuotaWindow    time.Duration `yaml:"quota_window" env:"LOGINGATE_SMS_QUOTA_WINDOW"`
	CodeTTL        time.Duration `yaml:"code_ttl" env:"LOGINGATE_SMS_CODE_TTL"`
	CodeLength     int           `yaml:"code_length" env:"LOGINGATE_SMS_CODE_LENGTH"`
	MobilePattern  string        `yaml:"mobile_pattern" env:"LOGINGATE_SMS_MOBILE_PATTERN"`
}

type MobizonConfig struct {
	APIKey   string        `yaml:"api_key" env:"LOGINGATE_MOBIZON_API_KEY"`
	SenderID string        `yaml:"sender_id" env:"LOGINGATE_MOBIZON_SENDER_ID"`
	DryRun   bool          `yaml:"dry_run" env:"LOGINGATE_MOBIZON_DRY_RUN"`
	BaseURL  string        `yaml:"base_url" env:"LOGINGATE_MOBIZON_BASE_URL"`
	Template string        `yaml:"template" env:"LOGINGATE_MOBIZON_TEMPLATE"`
	Timeout  time.Duration `yaml:"timeout" env:"LOGINGATE_MOBIZON_TIMEOUT"`
}

type SessionConfig struct {
	Duration time.Duration `yaml:"duration" env:"LOGINGATE_SESSION_DURATION"`
}

// MessagingConfig picks the welcome message driver: log, telegram or email.
type MessagingConfig struct {
	Driver          string        `yaml:"driver" env:"LOGINGATE_MESSAGING_DRIVER"`
	SystemAccount   string        `yaml:"system_account" env:"LOGINGATE_MESSAGING_SYSTEM_ACCOUNT"`
	WelcomeNewUser  string        `yaml:"welcome_new_user" env:"LOGINGATE_MESSAGING_WELCOME_NEW_USER"`
	WelcomeBackUser string        `yaml:"welcome_back_user" env:"LOGINGATE_MESSAGING_WELCOME_BACK_USER"`
	Timeout         time.Duration `yaml:"timeout" env:"LOGINGATE_MESSAGING_TIMEOUT"`
}

type TelegramConfig struct {
	BotToken string        `yaml:"bot_token" env:"LOGINGATE_TELEGRAM_BOT_TOKEN"`
	LinkTTL  time.Duration `yaml:"link_ttl" env:"LOGINGATE_TELEGRAM_LINK_TTL"`
	// WebhookURL is registered with Telegram at startup when set. Updates
	// must then carry WebhookSecret in X-Telegram-Bot-Api-Secret-Token.
	WebhookURL    string `yaml:"webhook_url" env:"LOGINGATE_TELEGRAM_WEBHOOK_URL"`
	WebhookSecret string `yaml:"webhook_secret" env:"LOGINGATE_TELEGRAM_WEBHOOK_SECRET"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"LOGINGATE_SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"LOGINGATE_SMTP_PORT"`
	SMTPUser     string `yaml:"smtp_user" env:"LOGINGATE_SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"LOGINGATE_SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"LOGINGATE_SMTP_FROM"`
	Subject      string `yaml:"subject" env:"LOGINGATE_SMTP_SUBJECT"`
}

// EvictionConfig bounds the in-memory stores. A zero MaxAge keeps entries
// forever; otherwise an entry expires MaxAge after its last write.
type EvictionConfig struct {
	MaxAge time.Duration `yaml:"max_age" env:"LOGINGATE_EVICTION_MAX_AGE"`
}

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	JWT         JWTConfig       `yaml:"jwt"`
	SMS         SMSConfig       `yaml:"sms"`
	Mobizon     MobizonConfig   `yaml:"mobizon"`
	Session     SessionConfig   `yaml:"session"`
	Messaging   MessagingConfig `yaml:"messaging"`
	Telegram    TelegramConfig  `yaml:"telegram"`
	Email       EmailConfig     `yaml:"email"`
	Eviction    EvictionConfig  `yaml:"eviction"`
	CallTimeout time.Duration   `yaml:"call_timeout" env:"LOGINGATE_CALL_TIMEOUT"`
}

// LoadConfig reads the YAML file at path, applies LOGINGATE_* environment
// overrides and fills in defaults. A missing file is not an error when
// path is the default one.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.JWT.TokenTTL == 0 {
		c.JWT.TokenTTL = 72 * time.Hour
	}
	if c.SMS.ResendCooldown == 0 {
		c.SMS.ResendCooldown = 60 * time.Second
	}
	if c.SMS.DailyLimit == 0 {
		c.SMS.DailyLimit = 10
	}
	if c.SMS.QuotaWindow == 0 {
		c.SMS.QuotaWindow = 24 * time.Hour
	}
	if c.SMS.CodeTTL == 0 {
		c.SMS.CodeTTL = 5 * time.Minute
	}
	if c.SMS.CodeLength == 0 {
		c.SMS.CodeLength = 4
	}
	if c.Mobizon.Timeout == 0 {
		c.Mobizon.Timeout = 10 * time.Second
	}
	if c.Session.Duration == 0 {
		c.Session.Duration = 300 * time.Second
	}
	if c.Messaging.Driver == "" {
		c.Messaging.Driver = "log"
	}
	if c.Messaging.SystemAccount == "" {
		c.Messaging.SystemAccount = "admin"
	}
	if c.Messaging.WelcomeNewUser == "" {
		c.Messaging.WelcomeNewUser = "Welcome! Your account has been created."
	}
	if c.Messaging.WelcomeBackUser == "" {
		c.Messaging.WelcomeBackUser = "Welcome back!"
	}
	if c.Messaging.Timeout == 0 {
		c.Messaging.Timeout = 5 * time.Second
	}
	if c.Telegram.LinkTTL == 0 {
		c.Telegram.LinkTTL = 15 * time.Minute
	}
	if c.Email.Subject == "" {
		c.Email.Subject = "Login notification"
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = 5 * time.Second
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Messaging.Driver {
	case "log":
	case "telegram":
		if c.Telegram.BotToken == "" {
			return errors.New("telegram.bot_token is required for the telegram driver")
		}
	case "email":
		if c.Email.SMTPHost == "" || c.Email.FromEmail == "" {
			return errors.New("email.smtp_host and email.from_email are required for the email driver")
		}
	default:
		return fmt.Errorf("unknown messaging driver %q", c.Messaging.Driver)
	}
	if c.Telegram.WebhookURL != "" {
		if c.Telegram.BotToken == "" {
			return errors.New("telegram.webhook_url needs telegram.bot_token")
		}
		if c.Telegram.WebhookSecret == "" {
			return errors.New("telegram.webhook_secret is required with telegram.webhook_url")
		}
	}
	// a shorter max age would forget quota windows and cooldowns early
	if c.Eviction.MaxAge > 0 && c.Eviction.MaxAge < c.SMS.QuotaWindow {
		return fmt.Errorf("eviction.max_age %s is shorter than sms.quota_window %s", c.Eviction.MaxAge, c.SMS.QuotaWindow)
	}
	return nil
}
