// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends selectable with APP_STORAGE.
const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable.
type Config struct {
	Env     string // APP_ENV: dev, test or prod
	Port    string // APP_PORT
	Storage string // APP_STORAGE: mysql or memory
	SiteURL string // SITE_URL, allowed CORS origin

	DBUser string
	DBPass string // may be empty
	DBHost string
	DBPort string
	DBName string

	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int

	RabbitURL string // empty disables the booking queue

	SMTPHost     string // empty disables confirmation mail
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CloudinaryCloud  string // empty disables /api/upload
	CloudinaryKey    string
	CloudinarySecret string

	OwnerEmail    string
	OwnerPassword string

	TokenPurgeEvery time.Duration
}

// Load reads configuration from the environment. Missing required variables
// produce an error naming the first one found.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		Env:     envStr("APP_ENV", "dev"),
		Port:    envStr("APP_PORT", "8080"),
		Storage: strings.ToLower(envStr("APP_STORAGE", StorageMySQL)),
		SiteURL: envStr("SITE_URL", "*"),

		JWTSecret:      l.must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", 10),

		RabbitURL: os.Getenv("RABBITMQ_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     envStr("SMTP_FROM", "no-reply@localhost"),

		CloudinaryCloud:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret: os.Getenv("CLOUDINARY_API_SECRET"),

		OwnerEmail:    os.Getenv("OWNER_EMAIL"),
		OwnerPassword: os.Getenv("OWNER_PASSWORD"),

		TokenPurgeEvery: envDur("TOKEN_PURGE_EVERY", time.Hour),
	}

	switch cfg.Storage {
	case StorageMySQL:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = l.must("DB_NAME")
	case StorageMemory:
	default:
		return Config{}, fmt.Errorf("invalid APP_STORAGE %q", cfg.Storage)
	}

	if l.err != nil {
		return Config{}, l.err
	}
	if cfg.AccessTTLMin <= 0 || cfg.RefreshTTLDays <= 0 {
		return Config{}, fmt.Errorf("token TTLs must be positive")
	}
	if (cfg.OwnerEmail == "") != (cfg.OwnerPassword == "") {
		return Config{}, fmt.Errorf("OWNER_EMAIL and OWNER_PASSWORD must be set together")
	}
	return cfg, nil
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// MailEnabled reports whether SMTP settings are present.
func (c Config) MailEnabled() bool { return c.SMTPHost != "" }

// MediaEnabled reports whether Cloudinary credentials are present.
func (c Config) MediaEnabled() bool {
	return c.CloudinaryCloud != "" && c.CloudinaryKey != "" && c.CloudinarySecret != ""
}

// loader remembers the first missing required variable.
type loader struct{ err error }

func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		if l.err == nil {
			l.err = fmt.Errorf("missing required env var: %s", key)
		}
		return ""
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
