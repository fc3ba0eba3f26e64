// Package session stores per-caller upload handoffs between the PDF upload
// and the summary request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"earnings_summary/internal/feature/summary/domain"
	"earnings_summary/internal/feature/summary/domain/entity"
	"earnings_summary/internal/feature/summary/usecase"
)

// UploadRedis implements usecase.UploadStore using Redis.
// Each upload lives under its own key and expires through the Redis TTL.
type UploadRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.UploadStore = (*UploadRedis)(nil)

// NewUploadRedis creates a new UploadRedis instance.
func NewUploadRedis(client *redis.Client, prefix string) *UploadRedis {
	if prefix == "" {
		prefix = "upload"
	}
	return &UploadRedis{
		client: client,
		prefix: prefix,
	}
}

// uploadKey returns the Redis key for an upload token.
func (r *UploadRedis) uploadKey(token string) string {
	return fmt.Sprintf("%s:%s", r.prefix, token)
}

// Save persists an upload until its ExpiresAt.
func (r *UploadRedis) Save(ctx context.Context, upload *entity.Upload) error {
	if upload.Token == "" {
		return fmt.Errorf("upload token is empty")
	}

	ttl := time.Until(upload.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("upload already expired")
	}

	data, err := json.Marshal(upload)
	if err != nil {
		return fmt.Errorf("failed to marshal upload: %w", err)
	}

	return r.client.Set(ctx, r.uploadKey(upload.Token), data, ttl).Err()
}

// Find retrieves an upload by token.
func (r *UploadRedis) Find(ctx context.Context, token string) (*entity.Upload, error) {
	data, err := r.client.Get(ctx, r.uploadKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUploadNotFound
		}
		return nil, err
	}

	var upload entity.Upload
	if err := json.Unmarshal(data, &upload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upload: %w", err)
	}

	// Redis TTL has second granularity
	if upload.IsExpired() {
		return nil, domain.ErrUploadNotFound
	}

	return &upload, nil
}

// Delete removes an upload. Deleting an unknown token is not an error.
func (r *UploadRedis) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.uploadKey(token)).Err()
}
