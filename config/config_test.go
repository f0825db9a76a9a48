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
	path := filepath.Join(t.TempDir(), "median.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MEDIAN_AUTH_REQUIRE_AUTH", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "/api", cfg.Server.APIPrefix)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownGrace)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Auth.RequireAuth)
	assert.Equal(t, "memory", cfg.Notify.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Notify.TTL)
	assert.Equal(t, 50, cfg.Notify.MaxPerUser)
	assert.Empty(t, cfg.Seed.Path)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  mode: debug
log:
  level: debug
  format: console
notify:
  backend: redis
  redis_addr: cache:6379
seed:
  path: fixtures/seed.yaml
`)
	t.Setenv("MEDIAN_SERVER_PORT", "9100")
	t.Setenv("MEDIAN_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("MEDIAN_SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env overrides the file")
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "redis", cfg.Notify.Backend)
	assert.Equal(t, "cache:6379", cfg.Notify.RedisAddr)
	assert.Equal(t, "fixtures/seed.yaml", cfg.Seed.Path)
	assert.True(t, cfg.Auth.RequireAuth)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MEDIAN_AUTH_REQUIRE_AUTH", "false")
	t.Setenv("DATABASE_URL", "postgres://localhost/median")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/median", cfg.DatabaseURL)
}

func TestLoad_RejectsSecretsInFile(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: oops\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secrets not allowed")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080, APIPrefix: "/api", Mode: "release"},
			Log:    LogConfig{Level: "info", Format: "json"},
			Notify: NotifyConfig{Backend: "memory", TTL: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "prefix without slash", mutate: func(c *Config) { c.Server.APIPrefix = "api" }, wantErr: "server.api_prefix"},
		{name: "unknown mode", mutate: func(c *Config) { c.Server.Mode = "prod" }, wantErr: "server.mode"},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "unknown backend", mutate: func(c *Config) { c.Notify.Backend = "kafka" }, wantErr: "notify.backend"},
		{name: "redis without addr", mutate: func(c *Config) { c.Notify.Backend = "redis" }, wantErr: "notify.redis_addr"},
		{name: "zero ttl", mutate: func(c *Config) { c.Notify.TTL = 0 }, wantErr: "notify.ttl"},
		{name: "database seed without url", mutate: func(c *Config) { c.Seed.FromDatabase = true }, wantErr: "DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = NewLogger(LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(0))

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
