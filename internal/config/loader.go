package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error. The result is not
// validated; call Config.Validate.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides overwrites fields whose SCOINS_* variable is set. PORT
// is honoured for hosting platforms; SCOINS_SERVER_PORT wins over it.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "PORT")
	setInt(&cfg.Server.Port, "SCOINS_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SCOINS_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.StaticDir, "SCOINS_SERVER_STATIC_DIR")
	setInt(&cfg.Server.RateLimitRequests, "SCOINS_SERVER_RATE_LIMIT_REQUESTS")
	setDuration(&cfg.Server.RateLimitWindow, "SCOINS_SERVER_RATE_LIMIT_WINDOW")

	// ── Storage ──
	setStr(&cfg.Storage.Backend, "SCOINS_STORAGE_BACKEND")
	setStr(&cfg.Storage.DataFile, "SCOINS_STORAGE_DATA_FILE")
	setStr(&cfg.Storage.ObjectKey, "SCOINS_STORAGE_OBJECT_KEY")
	setStr(&cfg.Storage.SnapshotName, "SCOINS_STORAGE_SNAPSHOT_NAME")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SCOINS_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SCOINS_REDIS_ADDR")
	setStr(&cfg.Redis.Addr, "REDIS_URL")
	setStr(&cfg.Redis.Namespace, "SCOINS_REDIS_NAMESPACE")
	setStr(&cfg.Redis.Password, "SCOINS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SCOINS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SCOINS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SCOINS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SCOINS_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SCOINS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SCOINS_S3_REGION")
	setStr(&cfg.S3.Bucket, "SCOINS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SCOINS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SCOINS_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SCOINS_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SCOINS_S3_FORCE_PATH_STYLE")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "SCOINS_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL")
	setStr(&cfg.Postgres.Host, "SCOINS_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SCOINS_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SCOINS_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SCOINS_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SCOINS_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SCOINS_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SCOINS_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SCOINS_POSTGRES_POOL_MIN_CONNS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SCOINS_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SCOINS_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SCOINS_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SCOINS_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "SCOINS_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the variable is
// present and parses.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
