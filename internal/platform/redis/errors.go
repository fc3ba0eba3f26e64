// Package redis opens the optional Redis connection used for caching and upload handoff.
package redis

import "errors"

// ErrNotConfigured is returned when REDIS_HOST is empty.
var ErrNotConfigured = errors.New("redis is not configured")
