// Package config loads settings from .env, an optional median.yaml and
// MEDIAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Auth        AuthConfig
	Seed        SeedConfig
	Notify      NotifyConfig
	DatabaseURL string
}

type ServerConfig struct {
	Host           string
	Port           int
	APIPrefix      string
	Mode           string
	AllowedOrigins []string
	ShutdownGrace  time.Duration
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level  string
	Format string
}

// AuthConfig configures bearer token checks. Secrets come from the
// environment only.
type AuthConfig struct {
	RequireAuth  bool
	JWTSecret    string
	PublicKeyPEM string
	Issuer       string
	Audience     string
}

type SeedConfig struct {
	// Path is a yaml or json fixture file; empty means the builtin seed.
	Path string
	// FromDatabase loads the seed from Postgres instead.
	FromDatabase bool
	// SavePath, when set, receives a snapshot of the store on shutdown.
	SavePath string
}

type NotifyConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	MaxPerUser    int
}

// Load reads configuration. Precedence: environment, then the config file,
// then defaults. An empty configPath looks for median.yaml in the working
// directory and carries on without one.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MEDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Shared names used by deployment tooling.
	_ = v.BindEnv("database_url", "MEDIAN_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.require_auth", "MEDIAN_AUTH_REQUIRE_AUTH", "REQUIRE_AUTH")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("median")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			APIPrefix:      v.GetString("server.api_prefix"),
			Mode:           v.GetString("server.mode"),
			AllowedOrigins: splitList(v.GetStringSlice("server.allowed_origins")),
			ShutdownGrace:  v.GetDuration("server.shutdown_grace"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Auth: AuthConfig{
			RequireAuth:  v.GetBool("auth.require_auth"),
			JWTSecret:    v.GetString("auth.jwt_secret"),
			PublicKeyPEM: v.GetString("auth.public_key_pem"),
			Issuer:       v.GetString("auth.issuer"),
			Audience:     v.GetString("auth.audience"),
		},
		Seed: SeedConfig{
			Path:         v.GetString("seed.path"),
			FromDatabase: v.GetBool("seed.from_database"),
			SavePath:     v.GetString("seed.save_path"),
		},
		Notify: NotifyConfig{
			Backend:       v.GetString("notify.backend"),
			RedisAddr:     v.GetString("notify.redis_addr"),
			RedisPassword: v.GetString("notify.redis_password"),
			RedisDB:       v.GetInt("notify.redis_db"),
			TTL:           v.GetDuration("notify.ttl"),
			MaxPerUser:    v.GetInt("notify.max_per_user"),
		},
		DatabaseURL: v.GetString("database_url"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.api_prefix", "/api")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("server.shutdown_grace", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("auth.require_auth", true)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.public_key_pem", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")

	v.SetDefault("seed.path", "")
	v.SetDefault("seed.from_database", false)
	v.SetDefault("seed.save_path", "")

	v.SetDefault("notify.backend", "memory")
	v.SetDefault("notify.redis_addr", "localhost:6379")
	v.SetDefault("notify.redis_password", "")
	v.SetDefault("notify.redis_db", 0)
	v.SetDefault("notify.ttl", "5m")
	v.SetDefault("notify.max_per_user", 50)

	v.SetDefault("database_url", "")
}

// validateConfig checks ranges and required combinations.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if !strings.HasPrefix(cfg.Server.APIPrefix, "/") {
		return fmt.Errorf("server.api_prefix must start with /, got %q", cfg.Server.APIPrefix)
	}
	if !slices.Contains([]string{"debug", "release", "test"}, cfg.Server.Mode) {
		return fmt.Errorf("server.mode must be debug, release or test, got %q", cfg.Server.Mode)
	}
	if !slices.Contains([]string{"json", "console"}, cfg.Log.Format) {
		return fmt.Errorf("log.format must be json or console, got %q", cfg.Log.Format)
	}
	switch cfg.Notify.Backend {
	case "memory":
	case "redis":
		if cfg.Notify.RedisAddr == "" {
			return fmt.Errorf("notify.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("notify.backend must be memory or redis, got %q", cfg.Notify.Backend)
	}
	if cfg.Notify.TTL <= 0 {
		return fmt.Errorf("notify.ttl must be positive, got %v", cfg.Notify.TTL)
	}
	if cfg.Seed.FromDatabase && cfg.DatabaseURL == "" {
		return fmt.Errorf("seed.from_database needs DATABASE_URL")
	}
	return nil
}

// validateNoSecretsInConfig keeps secrets out of config files.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("auth.jwt_secret") || v.InConfig("notify.redis_password") {
		return fmt.Errorf("secrets not allowed in config files (use MEDIAN_AUTH_JWT_SECRET / MEDIAN_NOTIFY_REDIS_PASSWORD)")
	}
	return nil
}

// splitList accepts both yaml lists and comma separated env values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
