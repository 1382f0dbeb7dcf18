package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Config centralises runtime configuration.
type Config struct {
	HTTPPort    string
	DatabaseURL string
	// Storage selects where users and addresses live.
	Storage string
	// TokenStore selects where token sessions live.
	TokenStore string
	RedisURL   string

	JWTSecret  string
	JWTIssuer  string
	TokenTTL   time.Duration
	BcryptCost int

	SessionSweepInterval time.Duration

	AllowedOrigins  []string
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int

	LogFormat      string
	LogLevel       string
	MetricsEnabled bool
}

// LoadDotEnv loads path into the process environment when the file exists.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from the process environment without validating it.
func FromEnv() Config {
	httpPort := getEnv("HTTP_PORT", "")
	if httpPort == "" {
		httpPort = getEnv("PORT", "8080")
	}

	storage := strings.ToLower(getEnv("STORAGE", BackendPostgres))

	return Config{
		HTTPPort:             httpPort,
		DatabaseURL:          resolveDatabaseURL(),
		Storage:              storage,
		TokenStore:           strings.ToLower(getEnv("TOKEN_STORE", storage)),
		RedisURL:             getEnv("REDIS_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTIssuer:            getEnv("JWT_ISSUER", "storeadmin"),
		TokenTTL:             getDurationEnv("TOKEN_TTL", 0),
		BcryptCost:           getIntEnv("BCRYPT_COST", 10),
		SessionSweepInterval: getDurationEnv("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		AllowedOrigins:       splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeoutSec:       getIntEnv("HTTP_READ_TIMEOUT", 15),
		WriteTimeoutSec:      getIntEnv("HTTP_WRITE_TIMEOUT", 15),
		IdleTimeoutSec:       getIntEnv("HTTP_IDLE_TIMEOUT", 60),
		LogFormat:            strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		MetricsEnabled:       getBoolEnv("METRICS_ENABLED", true),
	}
}

// Validate reports the first inconsistency in cfg.
func (c Config) Validate() error {
	switch c.Storage {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", BackendPostgres, BackendMemory, c.Storage)
	}

	switch c.TokenStore {
	case BackendPostgres:
		if c.Storage != BackendPostgres {
			return fmt.Errorf("TOKEN_STORE=%s requires STORAGE=%s", BackendPostgres, BackendPostgres)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when TOKEN_STORE=redis")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("TOKEN_STORE must be one of postgres, redis, memory, got %q", c.TokenStore)
	}

	if c.Storage == BackendPostgres && c.DatabaseURL == "" {
		return errors.New("database configuration missing: provide DATABASE_URL or PG* env vars")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	return nil
}

// Addr returns the listen address for the HTTP server. A bare port listens
// on all interfaces.
func (c Config) Addr() string {
	if strings.Contains(c.HTTPPort, ":") {
		return c.HTTPPort
	}
	return ":" + c.HTTPPort
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := []string{}
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return []string{"*"}
	}
	return parts
}

// resolveDatabaseURL prefers a full URL and falls back to libpq PG* variables.
func resolveDatabaseURL() string {
	for _, key := range []string{"DATABASE_URL", "POSTGRES_URL"} {
		if url := coerceDatabaseURL(os.Getenv(key)); url != "" {
			return url
		}
	}

	host := os.Getenv("PGHOST")
	user := os.Getenv("PGUSER")
	if host == "" || user == "" {
		return ""
	}

	dsn := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, getEnv("PGPORT", "5432")),
		Path:   "/" + getEnv("PGDATABASE", user),
		User:   neturl.User(user),
	}
	if password := os.Getenv("PGPASSWORD"); password != "" {
		dsn.User = neturl.UserPassword(user, password)
	}
	query := dsn.Query()
	query.Set("sslmode", getEnv("PGSSLMODE", "prefer"))
	dsn.RawQuery = query.Encode()

	return dsn.String()
}

func coerceDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"):
		return raw
	case strings.HasPrefix(raw, "postgresql://"):
		return "postgres://" + strings.TrimPrefix(raw, "postgresql://")
	default:
		return ""
	}
}
