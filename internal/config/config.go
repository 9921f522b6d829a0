package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Comgate  ComgateConfig  `koanf:"comgate"`
	Checkout CheckoutConfig `koanf:"checkout"`
	Mail     MailConfig     `koanf:"mail"`
	Store    StoreConfig    `koanf:"store"`
	Database DatabaseConfig `koanf:"database"`
	Retry    RetryConfig    `koanf:"retry"`
	Logger   LoggerConfig   `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
	CORSOrigins  []string      `koanf:"cors_origins"`
}

// ComgateConfig carries the merchant credentials. Merchant and Secret
// are intentionally not validated at load time: their absence is
// reported per request as an operator error, matching the storefront
// contract.
type ComgateConfig struct {
	Merchant    string        `koanf:"merchant"`
	Secret      string        `koanf:"secret"`
	Test        bool          `koanf:"test"`
	BaseURL     string        `koanf:"base_url" validate:"required"`
	ConnTimeout time.Duration `koanf:"conn_timeout" validate:"required"`
}

// Configured reports whether the merchant credentials are present.
func (c ComgateConfig) Configured() bool {
	return c.Merchant != "" && c.Secret != ""
}

type CheckoutConfig struct {
	PublicBaseURL string `koanf:"public_base_url" validate:"required"`
	Label         string `koanf:"label" validate:"required"`
	Currency      string `koanf:"currency" validate:"required"`
	Language      string `koanf:"language" validate:"required"`
	RefIDPrefix   string `koanf:"refid_prefix" validate:"required"`
	SuccessPath   string `koanf:"success_path" validate:"required"`
	CancelledPath string `koanf:"cancelled_path" validate:"required"`
	PendingPath   string `koanf:"pending_path" validate:"required"`
}

// MailConfig configures the outbound mail provider. An empty APIKey
// disables sending; orders still settle, the skip is logged.
type MailConfig struct {
	APIKey      string        `koanf:"api_key"`
	From        string        `koanf:"from"`
	OwnerEmail  string        `koanf:"owner_email"`
	BaseURL     string        `koanf:"base_url" validate:"required"`
	SendTimeout time.Duration `koanf:"send_timeout" validate:"required"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory postgres"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RetryConfig struct {
	BaseDelay  int32 `koanf:"base_delay"`
	MaxRetries int32 `koanf:"max_retries"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

// NewLogger builds the process-wide slog logger from the configured level.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":              "development",
		"server.port":              "3000",
		"server.read_timeout":      "10s",
		"server.write_timeout":     "20s",
		"server.idle_timeout":      "60s",
		"comgate.base_url":         "https://payments.comgate.cz",
		"comgate.conn_timeout":     "15s",
		"checkout.public_base_url": "https://www.elorajewelry.cz",
		"checkout.label":           "ELORA",
		"checkout.currency":        "CZK",
		"checkout.language":        "cs",
		"checkout.refid_prefix":    "elora",
		"checkout.success_path":    "/payment-success",
		// cancelled and pending intentionally share a landing page
		"checkout.cancelled_path":     "/payment-failed",
		"checkout.pending_path":       "/payment-failed",
		"mail.base_url":               "https://api.resend.com",
		"mail.send_timeout":           "15s",
		"store.driver":                "memory",
		"database.port":               5432,
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  "30m",
		"database.conn_max_idle_time": "5m",
		"retry.base_delay":            1,
		"retry.max_retries":           3,
		"logger.level":                "info",
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider("ELORA_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "ELORA_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	if mainConfig.Store.Driver == "postgres" {
		if mainConfig.Database.Host == "" || mainConfig.Database.User == "" || mainConfig.Database.Name == "" {
			err := errors.New("store.driver=postgres requires database host, user and name")
			logger.Error("config validation failed", "error", err)
			return nil, err
		}
	}

	return mainConfig, nil
}
