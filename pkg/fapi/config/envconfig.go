package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/quatton/fina/pkg/db"
	"github.com/quatton/fina/pkg/federation"
)

// DriverMemory keeps all data in process; nothing survives a restart.
const DriverMemory = "memory"

type EnvConfig struct {
	Port        string `envconfig:"PORT" default:"8000"`
	BaseURL     string `envconfig:"BASE_URL" default:"http://localhost:8000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	AuthSecret        string `envconfig:"AUTH_JWT_SECRET" required:"true"`
	AuthExpireMinutes int    `envconfig:"AUTH_JWT_EXPIRES_MINUTES" default:"60"`
	BcryptCost        int    `envconfig:"BCRYPT_COST" default:"12"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"fina"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"password"`
	DBName     string `envconfig:"DB_NAME" default:"fina"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBPath     string `envconfig:"DB_PATH" default:"fina.db"`

	GoogleClientID       string `envconfig:"OAUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `envconfig:"OAUTH_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI    string `envconfig:"OAUTH_GOOGLE_REDIRECT_URI" default:"http://localhost:8000/auth/oauth/google/callback"`
	FacebookClientID     string `envconfig:"OAUTH_FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `envconfig:"OAUTH_FACEBOOK_CLIENT_SECRET"`
	FacebookRedirectURI  string `envconfig:"OAUTH_FACEBOOK_REDIRECT_URI" default:"http://localhost:8000/auth/oauth/facebook/callback"`
	IDTokenMode          string `envconfig:"OAUTH_ID_TOKEN_MODE" default:"verified"`

	ValkeyAddr     string `envconfig:"VALKEY_ADDR"`
	ValkeyPassword string `envconfig:"VALKEY_PASSWORD"`
	ValkeyDB       int    `envconfig:"VALKEY_DB" default:"0"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"no-reply@fina.local"`

	AIBaseURL string `envconfig:"AI_BASE_URL" default:"https://router.huggingface.co/v1"`
	AIAPIKey  string `envconfig:"AI_APIKEY"`
	AIModel   string `envconfig:"AI_MODEL" default:"meta-llama/Llama-3.2-3B-Instruct:novita"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
}

// ValidateEnv loads .env in development, reads the environment and reports
// every invalid setting at once.
func ValidateEnv() (*EnvConfig, error) {
	if IsDev() {
		if err := godotenv.Load(); err != nil {
			log.Println("ℹ No .env file found")
		} else {
			log.Println("✓ Loaded .env file")
		}
	}

	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *EnvConfig) Validate() error {
	var errors []string

	if len(c.AuthSecret) < 32 {
		errors = append(errors, "  ❌ AUTH_JWT_SECRET must be at least 32 characters")
	}

	if c.AuthExpireMinutes <= 0 {
		errors = append(errors, "  ❌ AUTH_JWT_EXPIRES_MINUTES must be positive")
	}

	switch c.DBDriver {
	case db.DriverPostgres, DriverMemory:
	case db.DriverSQLite:
		if c.DBPath == "" {
			errors = append(errors, "  ❌ DB_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		errors = append(errors, fmt.Sprintf("  ❌ DB_DRIVER must be one of postgres, sqlite, memory (got %q)", c.DBDriver))
	}

	if (c.GoogleClientID != "") != (c.GoogleClientSecret != "") {
		errors = append(errors, "  ❌ Both OAUTH_GOOGLE_CLIENT_ID and OAUTH_GOOGLE_CLIENT_SECRET must be set together")
	}
	if (c.FacebookClientID != "") != (c.FacebookClientSecret != "") {
		errors = append(errors, "  ❌ Both OAUTH_FACEBOOK_CLIENT_ID and OAUTH_FACEBOOK_CLIENT_SECRET must be set together")
	}

	switch c.IDTokenMode {
	case federation.ModeVerified, federation.ModeUntrusted:
	default:
		errors = append(errors, fmt.Sprintf("  ❌ OAUTH_ID_TOKEN_MODE must be verified or untrusted (got %q)", c.IDTokenMode))
	}

	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		errors = append(errors, "  ❌ BASE_URL must be a valid URL")
	}

	if c.SMTPHost != "" && c.SMTPFrom == "" {
		errors = append(errors, "  ❌ SMTP_FROM is required when SMTP_HOST is set")
	}

	if _, err := url.ParseRequestURI(c.AIBaseURL); err != nil {
		errors = append(errors, "  ❌ AI_BASE_URL must be a valid URL")
	}

	if c.UpstreamTimeout <= 0 {
		errors = append(errors, "  ❌ UPSTREAM_TIMEOUT must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("environment validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}

// TokenTTL is the configured access token lifetime.
func (c *EnvConfig) TokenTTL() time.Duration {
	return time.Duration(c.AuthExpireMinutes) * time.Minute
}

// Database maps the DB_* settings onto a db.Config. The memory driver is
// served by an in-process SQLite database.
func (c *EnvConfig) Database() db.Config {
	switch c.DBDriver {
	case DriverMemory:
		return db.Config{Driver: db.DriverSQLite, Path: db.MemoryPath}
	case db.DriverSQLite:
		return db.Config{Driver: db.DriverSQLite, Path: c.DBPath}
	}
	return db.Config{
		Driver:   db.DriverPostgres,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Database: c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

func MaskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func (c *EnvConfig) Print(fmtr func(string, ...interface{})) {
	fmtr("📋 Configuration:\n")
	fmtr("  Environment: %s\n", c.Environment)
	fmtr("  Port: %s\n", c.Port)
	fmtr("  Base URL: %s\n", c.BaseURL)
	fmtr("  JWT Secret: %s\n", MaskSecret(c.AuthSecret))
	fmtr("  Token TTL: %s\n", c.TokenTTL())
	fmtr("  Bcrypt cost: %d\n", c.BcryptCost)

	switch c.DBDriver {
	case db.DriverPostgres:
		fmtr("  Database: postgres %s@%s:%d/%s (sslmode=%s)\n", c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
	case db.DriverSQLite:
		fmtr("  Database: sqlite %s\n", c.DBPath)
	default:
		fmtr("  Database: in-memory\n")
	}

	printOAuth(fmtr, "Google", c.GoogleClientID, c.GoogleClientSecret, c.GoogleRedirectURI)
	printOAuth(fmtr, "Facebook", c.FacebookClientID, c.FacebookClientSecret, c.FacebookRedirectURI)
	fmtr("  ID token mode: %s\n", c.IDTokenMode)

	if c.ValkeyAddr != "" {
		fmtr("  OAuth state store: ✓ Valkey %s (db %d, password %s)\n", c.ValkeyAddr, c.ValkeyDB, MaskSecret(c.ValkeyPassword))
	} else {
		fmtr("  OAuth state store: ✗ Disabled\n")
	}

	if c.SMTPHost != "" {
		fmtr("  Email: ✓ SMTP %s:%d as %s (user %s)\n", c.SMTPHost, c.SMTPPort, c.SMTPFrom, MaskSecret(c.SMTPUsername))
	} else {
		fmtr("  Email: log only\n")
	}

	if c.AIAPIKey != "" {
		fmtr("  Completion API: ✓ %s model %s (key %s)\n", c.AIBaseURL, c.AIModel, MaskSecret(c.AIAPIKey))
	} else {
		fmtr("  Completion API: ✗ Disabled\n")
	}
	fmtr("  CORS origins: %s\n", strings.Join(c.CORSAllowedOrigins, ", "))
	fmtr("  Upstream timeout: %s\n", c.UpstreamTimeout)
}

func printOAuth(fmtr func(string, ...interface{}), name, id, secret, redirect string) {
	if id == "" {
		fmtr("  %s OAuth: ✗ Disabled\n", name)
		return
	}
	fmtr("  %s OAuth: ✓ Enabled\n", name)
	fmtr("    Client ID: %s\n", MaskSecret(id))
	fmtr("    Client Secret: %s\n", MaskSecret(secret))
	fmtr("    Redirect URI: %s\n", redirect)
}
