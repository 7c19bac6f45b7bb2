// Package config loads server configuration from a YAML file, a .env file
// and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kate-app/backend/internal/payment"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	Settlement SettlementConfig `yaml:"settlement"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	StaticPath string `yaml:"static_path"` // Mini-App bundle, optional
}

// DatabaseConfig contains SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" (colored) or "json"
}

// AuthConfig contains Telegram and JWT settings
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	TokenTTLMinutes   int    `yaml:"token_ttl_minutes"`
	BotToken          string `yaml:"bot_token"`
	InitDataMaxAgeSec int    `yaml:"init_data_max_age_seconds"`

	// BotUsername is used to build t.me invite links, optional.
	BotUsername string `yaml:"bot_username"`
	// BotAPIURL overrides the Telegram Bot API endpoint, optional.
	BotAPIURL string `yaml:"bot_api_url"`
}

// SettlementConfig contains settlement behaviour settings
type SettlementConfig struct {
	// PaidPolicy is "pair" or "pair_amount", see payment.Policy.
	PaidPolicy string `yaml:"paid_policy"`

	// CurrencySymbol is appended to amounts in reminder messages.
	CurrencySymbol string `yaml:"currency_symbol"`

	// MessageTemplate is a text/template for debtor reminders.
	MessageTemplate string `yaml:"message_template"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "./data/kate.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Auth: AuthConfig{
			TokenTTLMinutes:   24 * 60,
			InitDataMaxAgeSec: 24 * 60 * 60,
		},
		Settlement: SettlementConfig{
			PaidPolicy:     string(payment.PolicyPair),
			CurrencySymbol: "₽",
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// An empty path skips the file. A .env file in the working directory is
// loaded into the environment first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Server.Port = port
		} else {
			slog.Warn("Ignoring invalid PORT", "value", val)
		}
	}
	if val := os.Getenv("STATIC_PATH"); val != "" {
		c.Server.StaticPath = val
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.Auth.JWTSecret = val
	}
	if val := os.Getenv("TELEGRAM_BOT_TOKEN"); val != "" {
		c.Auth.BotToken = val
	}
	if val := os.Getenv("TELEGRAM_BOT_USERNAME"); val != "" {
		c.Auth.BotUsername = val
	}
	if val := os.Getenv("PAID_POLICY"); val != "" {
		c.Settlement.PaidPolicy = val
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required (auth.jwt_secret or JWT_SECRET)")
	}
	if c.Auth.BotToken == "" {
		return errors.New("telegram bot token is required (auth.bot_token or TELEGRAM_BOT_TOKEN)")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return errors.New("token ttl must be positive")
	}
	if _, err := payment.ParsePolicy(c.Settlement.PaidPolicy); err != nil {
		return err
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TokenTTL returns the JWT lifetime.
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// InitDataMaxAge returns how old Telegram init data may be.
func (c *AuthConfig) InitDataMaxAge() time.Duration {
	return time.Duration(c.InitDataMaxAgeSec) * time.Second
}
