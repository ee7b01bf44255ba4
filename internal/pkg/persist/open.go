package persist

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Config selects and locates a backend.
type Config struct {
	Driver        string
	SQLitePath    string
	Postgres      PostgresConfig
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Opening persistence backend", zap.String("driver", cfg.Driver))
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryBackend(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.Postgres, logger)
	case DriverRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
