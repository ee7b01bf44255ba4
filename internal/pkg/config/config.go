package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PersistConfig struct {
	Driver     string
	Namespace  string
	SQLitePath string
	Postgres   PostgresConfig
	Redis      RedisConfig
}

type APIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// Token seeds the credential store when set.
	Token string
}

type SessionConfig struct {
	TTL               time.Duration
	MaxSelectedStyles int
	PhaseDelay        time.Duration
	TypingDelay       time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type Config struct {
	ServerPort   string
	MetricsAddr  string
	PprofAddr    string
	OTLPEndpoint string
	LogLevel     string
	ServicesMode string
	API          APIConfig
	Persist      PersistConfig
	Session      SessionConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var errs []error
	cfg := &Config{
		ServerPort:   getEnvOrDefault("SERVER_PORT", "8091"),
		MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
		PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		ServicesMode: getEnvOrDefault("SERVICES_MODE", "fixture"),
		API: APIConfig{
			BaseURL:       getEnvOrDefault("API_BASE_URL", ""),
			Timeout:       getDuration("API_TIMEOUT", 30*time.Second, &errs),
			RetryAttempts: getInt("API_RETRY_ATTEMPTS", 3, &errs),
			RetryDelay:    getDuration("API_RETRY_DELAY", time.Second, &errs),
			Token:         getEnvOrDefault("API_TOKEN", ""),
		},
		Persist: PersistConfig{
			Driver:     getEnvOrDefault("PERSIST_DRIVER", "memory"),
			Namespace:  getEnvOrDefault("PERSIST_NAMESPACE", "travel-planner-storage"),
			SQLitePath: getEnvOrDefault("PERSIST_SQLITE_PATH", "tripplanner.db"),
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5454"),
				DB:       getEnvOrDefault("POSTGRES_DB", "tripplanner"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
			},
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getInt("REDIS_DB", 0, &errs),
			},
		},
		Session: SessionConfig{
			TTL:               getDuration("SESSION_TTL", 2*time.Hour, &errs),
			MaxSelectedStyles: getInt("MAX_SELECTED_STYLES", 3, &errs),
			PhaseDelay:        getDuration("PLANNING_PHASE_DELAY", 1500*time.Millisecond, &errs),
			TypingDelay:       getDuration("TYPING_DELAY", time.Second, &errs),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloat("RATE_LIMIT_RPS", 10, &errs),
			Burst: getInt("RATE_LIMIT_BURST", 20, &errs),
		},
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}

	switch cfg.Persist.Driver {
	case "memory", "sqlite", "redis":
	case "postgres":
		if cfg.Persist.Postgres.Password == "" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
		}
	default:
		return nil, fmt.Errorf("PERSIST_DRIVER must be one of memory, sqlite, postgres, redis; got %q", cfg.Persist.Driver)
	}

	switch cfg.ServicesMode {
	case "fixture":
	case "live":
		if cfg.API.BaseURL == "" {
			return nil, fmt.Errorf("API_BASE_URL environment variable is required in live mode")
		}
	default:
		return nil, fmt.Errorf("SERVICES_MODE must be fixture or live; got %q", cfg.ServicesMode)
	}

	if cfg.API.RetryAttempts < 1 {
		return nil, fmt.Errorf("API_RETRY_ATTEMPTS must be at least 1")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer: %w", key, err))
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64, errs *[]error) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a number: %w", key, err))
		return defaultValue
	}
	return f
}

// getDuration accepts Go durations ("1500ms") or a bare number of milliseconds.
func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration: %w", key, err))
		return defaultValue
	}
	return d
}
