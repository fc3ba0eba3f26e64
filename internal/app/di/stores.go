// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"

	"earnings_summary/internal/feature/summary/usecase"
	"earnings_summary/internal/platform/cache"
	"earnings_summary/internal/platform/session"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backend reports which storage backend the stores below will use.
func Backend(rdb *redis.Client) string {
	if rdb != nil {
		return BackendRedis
	}
	return BackendMemory
}

// NewUploadStore creates an UploadStore implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to an in-process store.
func NewUploadStore(rdb *redis.Client) usecase.UploadStore {
	if rdb != nil {
		return session.NewUploadRedis(rdb, "upload")
	}
	return session.NewUploadMemory()
}

// NewCacheStore creates the response cache backend, falling back to memory without Redis.
func NewCacheStore(rdb *redis.Client) cache.Store {
	if rdb != nil {
		return cache.NewRedisStore(rdb)
	}
	return cache.NewMemoryStore()
}
