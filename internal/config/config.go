// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	LogLevel  string // minimum log level (trace/debug/info/warn/error)
	LogPretty bool   // human-friendly console logs instead of JSON

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	DBMaxOpenConns int // connection pool ceiling
	DBMaxIdleConns int // idle connections kept in the pool
	DBConnLifeMin  int // connection lifetime in minutes

	JWTSecret      string // secret used to sign access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	VerifyTTLHours int    // email verification token time-to-live in hours
	BcryptCost     int    // bcrypt cost for password hashing

	CookieSecure bool // mark the refresh token cookie Secure (disable for local dev)

	AMQPURL string // message broker URL; empty disables queued email delivery

	SMTP SMTPConfig
}

// SMTPConfig configures the outbound mail sender. When Enabled is false the
// sender logs messages instead of delivering them.
type SMTPConfig struct {
	Enabled    bool
	Host       string
	Port       int
	Username   string
	Password   string
	Sender     string
	SenderName string
	BaseURL    string // base URL used to build verification links
}

// Load reads configuration values from environment variables and returns a
// Config.
func Load() Config {
	return Config{
		Env:       getenv("APP_ENV", "dev"),
		Port:      getenv("APP_PORT", "8080"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogPretty: envBool("LOG_PRETTY", false),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifeMin:  envInt("DB_CONN_MAX_LIFETIME_MIN", 30),

		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		VerifyTTLHours: envInt("VERIFY_TOKEN_TTL_HOURS", 24),
		BcryptCost:     envInt("BCRYPT_COST", 12),

		CookieSecure: envBool("COOKIE_SECURE", true),

		AMQPURL: getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),

		SMTP: SMTPConfig{
			Enabled:    envBool("SMTP_ENABLED", false),
			Host:       getenv("SMTP_HOST", "localhost"),
			Port:       envInt("SMTP_PORT", 587),
			Username:   os.Getenv("SMTP_USERNAME"),
			Password:   os.Getenv("SMTP_PASSWORD"),
			Sender:     getenv("SMTP_SENDER_EMAIL", "noreply@talenthub.local"),
			SenderName: getenv("SMTP_SENDER_NAME", "Talent Hub"),
			BaseURL:    getenv("BASE_URL", "http://localhost:8080"),
		},
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}
