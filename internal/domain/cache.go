package domain

import (
	"context"
	"time"
)

// CacheError is an error raised by a cache adapter.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned by Get and HGet when nothing is stored under the key.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the port the progress, avatar, notification and revocation stores
// share. Adapters must treat a missing key on Delete as success.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value; zero expiration keeps it until deleted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error

	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, field string, value string) error
	HDel(ctx context.Context, key string, fields ...string) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
}
