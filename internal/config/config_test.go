package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	chdir(t, t.TempDir()) // no stray .env

	path := writeConfig(t, `
server:
  port: 9090
database:
  path: /tmp/kate.db
log:
  level: debug
  format: json
auth:
  jwt_secret: file-secret
  bot_token: "123:abc"
  bot_username: kate_events_bot
  token_ttl_minutes: 30
settlement:
  paid_policy: pair_amount
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, "/tmp/kate.db", cfg.Database.Path)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL())
	assert.Equal(t, "kate_events_bot", cfg.Auth.BotUsername)
	assert.Empty(t, cfg.Auth.BotAPIURL)
	assert.Equal(t, "pair_amount", cfg.Settlement.PaidPolicy)
	assert.Equal(t, "₽", cfg.Settlement.CurrencySymbol, "defaults survive partial files")
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "7000")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "1:env")
	t.Setenv("PAID_POLICY", "pair")
	t.Setenv("TELEGRAM_BOT_USERNAME", "env_bot")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "1:env", cfg.Auth.BotToken)
	assert.Equal(t, "pair", cfg.Settlement.PaidPolicy)
	assert.Equal(t, "env_bot", cfg.Auth.BotUsername)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=dotenv-secret\nTELEGRAM_BOT_TOKEN=2:dot\n"), 0o600))
	// godotenv does not override variables that are already set.
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	os.Unsetenv("TELEGRAM_BOT_TOKEN")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "2:dot", cfg.Auth.BotToken)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Auth.JWTSecret = "s"
		cfg.Auth.BotToken = "t"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "no database", mutate: func(c *Config) { c.Database.Path = "" }},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }},
		{name: "no jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }},
		{name: "no bot token", mutate: func(c *Config) { c.Auth.BotToken = "" }},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTLMinutes = 0 }},
		{name: "unknown policy", mutate: func(c *Config) { c.Settlement.PaidPolicy = "bucket" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
