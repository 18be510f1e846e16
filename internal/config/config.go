// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Blob backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendObject   = "object"
)

// AuthConfig holds bearer-token authentication settings. Auth is off when
// no shared secret, issuer or JWKS endpoint is configured.
type AuthConfig struct {
	JWTSecret string // HS256 shared secret
	IssuerURL string // OIDC issuer URL
	JWKSURL   string // JWKS endpoint; skips OIDC discovery
	Audience  string // required audience when IssuerURL or JWKSURL is set
	NameClaim string // claim holding the principal name (default "email")
}

// Enabled reports whether any authenticator is configured.
func (a *AuthConfig) Enabled() bool {
	return a.JWTSecret != "" || a.IssuerURL != "" || a.JWKSURL != ""
}

// Config holds the server configuration.
type Config struct {
	ListenAddr string
	LogLevel   string
	Env        string

	// Storage
	Backend         string // sqlite, postgres or object
	MetaDBPath      string // SQLite file; also holds the audit log
	PostgresDSN     string
	BlobLocation    string // s3://, gs:// or az:// URI when Backend is object
	S3KeyID         string
	S3Secret        string
	S3Endpoint      string
	S3Region        string
	S3URLStyle      string
	GCSKeyFile      string
	AzureAccount    string
	AzureAccountKey string

	DefaultRulesPath string // YAML file of default rules (optional)
	MaxUploadBytes   int64
	WriteRetries     int // compare-and-swap attempts for server-side merges

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string

	ShutdownTimeout time.Duration

	Auth AuthConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		Env:              os.Getenv("ENV"),
		Backend:          strings.ToLower(os.Getenv("BLOB_BACKEND")),
		MetaDBPath:       os.Getenv("META_DB_PATH"),
		PostgresDSN:      os.Getenv("DATABASE_URL"),
		BlobLocation:     os.Getenv("BLOB_LOCATION"),
		S3KeyID:          os.Getenv("KEY_ID"),
		S3Secret:         os.Getenv("SECRET"),
		S3Endpoint:       os.Getenv("ENDPOINT"),
		S3Region:         os.Getenv("REGION"),
		S3URLStyle:       os.Getenv("S3_URL_STYLE"),
		GCSKeyFile:       os.Getenv("GCS_KEY_FILE"),
		AzureAccount:     os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		DefaultRulesPath: os.Getenv("DEFAULT_RULES_PATH"),
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			IssuerURL: os.Getenv("AUTH_ISSUER_URL"),
			JWKSURL:   os.Getenv("AUTH_JWKS_URL"),
			Audience:  os.Getenv("AUTH_AUDIENCE"),
			NameClaim: os.Getenv("AUTH_NAME_CLAIM"),
		},
	}

	var err error
	if cfg.RateLimitRPS, err = parseFloatEnv("RATE_LIMIT_RPS", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = parseIntEnv("RATE_LIMIT_BURST", 200); err != nil {
		return nil, err
	}
	if cfg.WriteRetries, err = parseIntEnv("WRITE_RETRIES", 3); err != nil {
		return nil, err
	}
	maxUpload, err := parseIntEnv("MAX_UPLOAD_BYTES", 32<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)
	cfg.ShutdownTimeout = 10 * time.Second
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "sheetmap.sqlite"
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}
	if cfg.Auth.NameClaim == "" {
		cfg.Auth.NameClaim = "email"
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	switch cfg.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when BLOB_BACKEND=postgres")
		}
	case BackendObject:
		if cfg.BlobLocation == "" {
			return nil, fmt.Errorf("BLOB_LOCATION is required when BLOB_BACKEND=object")
		}
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q (want sqlite, postgres or object)", cfg.Backend)
	}
	if (cfg.Auth.IssuerURL != "" || cfg.Auth.JWKSURL != "") && cfg.Auth.Audience == "" {
		return nil, fmt.Errorf("AUTH_AUDIENCE is required when AUTH_ISSUER_URL or AUTH_JWKS_URL is set")
	}
	if cfg.WriteRetries < 1 {
		return nil, fmt.Errorf("WRITE_RETRIES must be at least 1")
	}

	if !cfg.Auth.Enabled() {
		cfg.Warnings = append(cfg.Warnings, "authentication is disabled; set JWT_SECRET or AUTH_ISSUER_URL")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if !cfg.Auth.Enabled() {
			return nil, fmt.Errorf("authentication must be configured in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func parseIntEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDotEnv reads a .env file without overriding variables already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
