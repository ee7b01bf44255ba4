// Package persist keeps the durable slices of a planning session in a key-value backend.
package persist

import (
	"context"
	"errors"
)

// ErrUnknownDriver is returned by Open for an unsupported PERSIST_DRIVER.
var ErrUnknownDriver = errors.New("unknown persistence driver")

// Backend is a durable key-value store. Get reports ok=false for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)
