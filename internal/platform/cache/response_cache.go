package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultTTL is how long a cached response is served.
const DefaultTTL = 300 * time.Second

// HeaderCache reports whether a response came from the cache.
const HeaderCache = "X-Cache"

// cachedResponse is the serialized form of a cached response.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyWriter tees the response body so it can be stored after the handler runs.
type bodyWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache caches 200 responses keyed by route path and full query string.
// The request body is not part of the key, so two POSTs with the same query
// string share one entry. If ttl is 0 it defaults to DefaultTTL. If namespace
// is empty it uses "response". A nil store disables caching.
func ResponseCache(store Store, ttl time.Duration, namespace string) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "response"
	}

	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := cacheKey(namespace, c.Request.URL.Path, c.Request.URL.Query().Encode())

		// 1) Check cache
		if b, ok, err := store.Get(ctx, key); err != nil {
			slog.Warn("response cache read failed", "key", key, "error", err)
		} else if ok {
			var cached cachedResponse
			if err := json.Unmarshal(b, &cached); err == nil {
				c.Header(HeaderCache, "HIT")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
			slog.Warn("discarding corrupted cache entry", "key", key)
		}

		// 2) Run the handler, capturing its body
		w := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Header(HeaderCache, "MISS")
		c.Next()

		// 3) Store successful responses only (best effort)
		if w.Status() != http.StatusOK {
			return
		}
		b, err := json.Marshal(cachedResponse{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.buf.Bytes(),
		})
		if err != nil {
			return
		}
		if err := store.Set(ctx, key, b, ttl); err != nil {
			slog.Warn("response cache write failed", "key", key, "error", err)
		}
	}
}

// cacheKey generates a cache key for a path and its normalized query string.
func cacheKey(namespace, path, query string) string {
	return fmt.Sprintf("%s:%s?%s", namespace, safe(path), query)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
