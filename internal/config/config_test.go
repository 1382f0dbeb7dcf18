package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_PORT", "PORT", "DATABASE_URL", "POSTGRES_URL", "PGHOST", "PGUSER", "PGPASSWORD",
	"PGDATABASE", "PGPORT", "PGSSLMODE", "STORAGE", "TOKEN_STORE", "REDIS_URL", "JWT_SECRET",
	"JWT_ISSUER", "TOKEN_TTL", "BCRYPT_COST", "SESSION_SWEEP_INTERVAL", "CORS_ALLOWED_ORIGINS",
	"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT", "LOG_FORMAT", "LOG_LEVEL",
	"METRICS_ENABLED",
}

// clearEnv blanks every key Load reads; getEnv treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendPostgres, cfg.Storage)
	assert.Equal(t, BackendPostgres, cfg.TokenStore)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, "storeadmin", cfg.JWTIssuer)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestAddr_KeepsHostPort(t *testing.T) {
	assert.Equal(t, ":9000", Config{HTTPPort: "9000"}.Addr())
	assert.Equal(t, "127.0.0.1:9000", Config{HTTPPort: "127.0.0.1:9000"}.Addr())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE", "MEMORY")
	t.Setenv("TOKEN_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := FromEnv()
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.Storage)
	assert.Equal(t, BackendRedis, cfg.TokenStore)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.MetricsEnabled)
}

func TestResolveDatabaseURL(t *testing.T) {
	t.Run("postgresql scheme is normalised", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgresql://app:pw@db:5432/store")
		assert.Equal(t, "postgres://app:pw@db:5432/store", resolveDatabaseURL())
	})

	t.Run("assembled from PG vars", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PGHOST", "db")
		t.Setenv("PGUSER", "app")
		t.Setenv("PGPASSWORD", "pw")
		t.Setenv("PGDATABASE", "store")
		assert.Equal(t, "postgres://app:pw@db:5432/store?sslmode=prefer", resolveDatabaseURL())
	})

	t.Run("nothing configured", func(t *testing.T) {
		clearEnv(t)
		assert.Empty(t, resolveDatabaseURL())
	})
}

func TestValidate(t *testing.T) {
	base := Config{Storage: BackendMemory, TokenStore: BackendMemory, JWTSecret: "s"}
	require.NoError(t, base.Validate())

	tests := map[string]func(c *Config){
		"unknown storage":            func(c *Config) { c.Storage = "mongo" },
		"unknown token store":        func(c *Config) { c.TokenStore = "file" },
		"postgres tokens need users": func(c *Config) { c.TokenStore = BackendPostgres },
		"redis needs url":            func(c *Config) { c.TokenStore = BackendRedis },
		"postgres needs dsn":         func(c *Config) { c.Storage = BackendPostgres },
		"missing secret":             func(c *Config) { c.JWTSecret = "" },
		"negative ttl":               func(c *Config) { c.TokenTTL = -time.Second },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv_FeedsFromEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"STORAGE=memory\nJWT_SECRET=from-dotenv\nHTTP_PORT=7070\n"), 0o600))
	t.Chdir(dir)

	// godotenv does not override variables that are already set, even empty ones.
	for _, key := range []string{"STORAGE", "JWT_SECRET", "HTTP_PORT"} {
		require.NoError(t, os.Unsetenv(key))
	}

	require.NoError(t, LoadDotEnv(".env"))
	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "from-dotenv", cfg.JWTSecret)
	assert.Equal(t, "7070", cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.Storage)
}
