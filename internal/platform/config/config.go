package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures server-level configuration.
type Config struct {
	Addr        string
	PostgresDSN string
	Debug       bool

	// Transport-level signing key for session tokens.
	TokenSigningKey string
	// Fixed salt mixed into the business-layer signature message.
	SignatureSalt string
	// Default session token lifetime.
	SessionLifetime time.Duration

	// Hosted login page and logo asset base URLs.
	WebLoginBaseURL string
	AssetBaseURL    string

	// Console access: static admin token plus a provisioned operator.
	AdminToken           string
	ConsoleEmail         string
	ConsolePasswordHash  string
	ConsoleTokenLifetime time.Duration

	// Sandbox dev user phone hashing material.
	HashIDSalt1  string
	HashIDSalt2  string
	HashIDSecret string
}

// FromEnv builds a Config from environment variables so main stays lean.
// Defaults are for development and must be overridden in production.
func FromEnv() Config {
	return Config{
		Addr:        envOr("HUMANID_ADDR", ":8080"),
		PostgresDSN: os.Getenv("HUMANID_POSTGRES_DSN"),
		Debug:       os.Getenv("HUMANID_DEBUG") == "true",

		TokenSigningKey: envOr("HUMANID_TOKEN_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SignatureSalt:   envOr("HUMANID_SIGNATURE_SALT", "dev-signature-salt"),
		SessionLifetime: envSeconds("HUMANID_SESSION_LIFETIME", 300*time.Second),

		WebLoginBaseURL: envOr("HUMANID_WEB_LOGIN_URL", "http://localhost:8080/web-login"),
		AssetBaseURL:    envOr("HUMANID_ASSET_URL", "http://localhost:8080/public"),

		AdminToken:           envOr("HUMANID_ADMIN_TOKEN", "dev-admin-token"),
		ConsoleEmail:         envOr("HUMANID_CONSOLE_EMAIL", "admin@localhost"),
		ConsolePasswordHash:  os.Getenv("HUMANID_CONSOLE_PASSWORD_HASH"),
		ConsoleTokenLifetime: envSeconds("HUMANID_CONSOLE_TOKEN_LIFETIME", time.Hour),

		HashIDSalt1:  envOr("HUMANID_HASH_ID_SALT_1", "dev-salt-1"),
		HashIDSalt2:  envOr("HUMANID_HASH_ID_SALT_2", "dev-salt-2"),
		HashIDSecret: envOr("HUMANID_HASH_ID_SECRET", "dev-hash-secret"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
