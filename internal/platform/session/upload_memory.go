package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"earnings_summary/internal/feature/summary/domain"
	"earnings_summary/internal/feature/summary/domain/entity"
	"earnings_summary/internal/feature/summary/usecase"
)

// UploadMemory implements usecase.UploadStore in process memory.
// It is used when Redis is unavailable; uploads are still keyed per caller
// and expire, but do not survive a restart or span replicas.
type UploadMemory struct {
	mu      sync.Mutex
	uploads map[string]entity.Upload
	now     func() time.Time
}

var _ usecase.UploadStore = (*UploadMemory)(nil)

// NewUploadMemory creates an empty in-memory store.
func NewUploadMemory() *UploadMemory {
	return &UploadMemory{
		uploads: make(map[string]entity.Upload),
		now:     time.Now,
	}
}

// Save stores a copy of the upload and drops expired entries.
func (m *UploadMemory) Save(ctx context.Context, upload *entity.Upload) error {
	if upload.Token == "" {
		return fmt.Errorf("upload token is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !upload.ExpiresAt.After(now) {
		return fmt.Errorf("upload already expired")
	}

	for token, u := range m.uploads {
		if !u.ExpiresAt.After(now) {
			delete(m.uploads, token)
		}
	}

	m.uploads[upload.Token] = *upload
	return nil
}

// Find returns a copy of the upload, or domain.ErrUploadNotFound.
func (m *UploadMemory) Find(ctx context.Context, token string) (*entity.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.uploads[token]
	if !ok {
		return nil, domain.ErrUploadNotFound
	}
	if !u.ExpiresAt.After(m.now()) {
		delete(m.uploads, token)
		return nil, domain.ErrUploadNotFound
	}
	return &u, nil
}

// Delete removes an upload.
func (m *UploadMemory) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, token)
	return nil
}

// Len returns the number of stored uploads, including ones not yet swept.
func (m *UploadMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}
