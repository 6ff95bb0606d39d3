// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath = pflag.String("config", ".", "Directory containing config.toml")
	port       = pflag.Int("port", 0, "Port to listen on, overrides host.port")

	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	if !pflag.Parsed() {
		pflag.Parse()
	}

	// A missing .env is fine, the variables may come from the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file, %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	Defaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if *port > 0 {
		v.Set("host.port", *port)
	}

	return Validate()
}

// Defaults binds every environment variable the app understands and
// registers the default values. It is split from Setup so tests can
// get a usable configuration without touching flags or files.
func Defaults() {
	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.public_url", "HOST_PUBLIC_URL")
	v.BindEnv("host.cors_origins", "HOST_CORS")
	v.BindEnv("host.ssl_enabled", "HOST_SSL_ENABLED")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN")

	v.BindEnv("upstream.base_url", "OPENROUTER_BASE_URL")
	v.BindEnv("upstream.api_key", "OPENROUTER_API_KEY")
	v.BindEnv("upstream.referer", "OPENROUTER_REFERER")
	v.BindEnv("upstream.title", "OPENROUTER_TITLE")
	v.BindEnv("upstream.chat_model", "OPENROUTER_CHAT_MODEL")
	v.BindEnv("upstream.image_model", "OPENROUTER_IMAGE_MODEL")
	v.BindEnv("upstream.chat_timeout", "OPENROUTER_CHAT_TIMEOUT")
	v.BindEnv("upstream.image_timeout", "OPENROUTER_IMAGE_TIMEOUT")

	v.BindEnv("smtp.host", "SMTP_HOST")
	v.BindEnv("smtp.port", "SMTP_PORT")
	v.BindEnv("smtp.username", "SMTP_USERNAME")
	v.BindEnv("smtp.password", "SMTP_PASSWORD")
	v.BindEnv("smtp.from", "SMTP_FROM")

	v.BindEnv("jwt.secret", "JWT_SECRET")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")
	v.BindEnv("security.resend_cooldown", "SECURITY_RESEND_COOLDOWN")

	v.BindEnv("chat.max_content_length", "CHAT_MAX_CONTENT_LENGTH")
	v.BindEnv("chat.history_limit", "CHAT_HISTORY_LIMIT")

	v.BindEnv("cleanup.schedule", "CLEANUP_SCHEDULE")
	v.BindEnv("cache.redis_url", "CACHE_REDIS_URL")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8000)
	v.SetDefault("host.public_url", "http://localhost:8000")
	v.SetDefault("host.cors_origins", []string{"*"})
	v.SetDefault("host.ssl_enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db?_foreign_keys=on")

	v.SetDefault("upstream.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("upstream.referer", "http://localhost:5173")
	v.SetDefault("upstream.title", "HopperAI")
	v.SetDefault("upstream.chat_model", "anthropic/claude-2")
	v.SetDefault("upstream.image_model", "stabilityai/stable-diffusion-xl")
	v.SetDefault("upstream.chat_timeout", "60s")
	v.SetDefault("upstream.image_timeout", "30s")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("security.rate_limit", 5)
	v.SetDefault("security.resend_cooldown", "60s")

	v.SetDefault("chat.max_content_length", 32000)
	v.SetDefault("chat.history_limit", 50)

	v.SetDefault("cleanup.schedule", "@daily")
}

// Validate checks the loaded values. Missing upstream or SMTP credentials
// only produce warnings since /health and the account endpoints work
// without them.
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	if v.GetDuration("upstream.chat_timeout") <= 0 {
		return errors.New("upstream.chat_timeout must be bigger than 0")
	}

	if v.GetDuration("upstream.image_timeout") <= 0 {
		return errors.New("upstream.image_timeout must be bigger than 0")
	}

	if v.GetInt("chat.max_content_length") <= 0 {
		return errors.New("chat.max_content_length must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if v.GetDuration("security.resend_cooldown") < 0 {
		return errors.New("security.resend_cooldown can't be negative")
	}

	if v.GetString("jwt.secret") == "" {
		return fmt.Errorf("no JWT secret set. Set JWT_SECRET or jwt.secret in config.toml, for example:\n\n%s", genSecret())
	}

	if v.GetString("upstream.api_key") == "" {
		fmt.Println("[WARNING]: OPENROUTER_API_KEY is not set, /chat and /generate-image will fail upstream")
	}

	if v.GetString("smtp.host") == "" {
		fmt.Println("[WARNING]: SMTP_HOST is not set, verification emails won't be delivered")
	}

	return nil
}

// CORSOrigins returns host.cors_origins as a list. Values coming from
// HOST_CORS are comma separated.
func CORSOrigins() []string {
	var out []string

	for _, o := range v.GetStringSlice("host.cors_origins") {
		for _, p := range strings.Split(o, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}

	return out
}
