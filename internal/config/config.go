package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Export   ExportConfig
	Cache    CacheConfig
	HTTP     HTTPConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	SeedDemoData   bool
	SeedDir        string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// ExportConfig controls where export files are written and how long they live.
type ExportConfig struct {
	Dir                 string
	CleanupDelaySeconds int
}

// CacheConfig controls the statistics cache.
type CacheConfig struct {
	StatisticsTTLSeconds int
}

// HTTPConfig holds edge middleware settings.
type HTTPConfig struct {
	CORSAllowOrigins       []string
	RateLimitMax           int
	RateLimitWindowSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 0))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 10))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "employee-service"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "1.0.0"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			SeedDemoData:   getEnvAsBool("POSTGRES_SEED_DEMO_DATA", strings.EqualFold(env, "development")),
			SeedDir:        getEnv("POSTGRES_SEED_DIR", "migrations/seed"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Export: ExportConfig{
			Dir:                 getEnv("EXPORT_DIR", "exports"),
			CleanupDelaySeconds: getEnvAsInt("EXPORT_CLEANUP_DELAY_SECONDS", 5),
		},
		Cache: CacheConfig{
			StatisticsTTLSeconds: getEnvAsInt("CACHE_STATISTICS_TTL_SECONDS", 60),
		},
		HTTP: HTTPConfig{
			CORSAllowOrigins:       getEnvAsList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
			RateLimitMax:           getEnvAsInt("RATE_LIMIT_MAX", 100),
			RateLimitWindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 900),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// CleanupDelay returns how long an export file is kept after it was sent.
func (e ExportConfig) CleanupDelay() time.Duration {
	if e.CleanupDelaySeconds < 0 {
		return 0
	}
	return time.Duration(e.CleanupDelaySeconds) * time.Second
}

// StatisticsTTL returns the cache lifetime of employee statistics; zero disables caching.
func (c CacheConfig) StatisticsTTL() time.Duration {
	if c.StatisticsTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.StatisticsTTLSeconds) * time.Second
}

// RateLimitWindow returns the limiter expiration window.
func (h HTTPConfig) RateLimitWindow() time.Duration {
	if h.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(h.RateLimitWindowSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
