// Package blob stores raw uploaded bytes. It is the narrow face of the
// binary object storage collaborator; everything else in the system sees
// only an opaque storage path.
package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/kognita-cloud/ragdex/internal/db"
	"github.com/kognita-cloud/ragdex/internal/domain"
)

// store is the consumer interface for blob payloads (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Store reads and writes raw document payloads.
type Store struct {
	store store
}

// New creates a blob store.
func New(s store) *Store {
	return &Store{store: s}
}

// Put stores raw bytes under an opaque storage path.
func (s *Store) Put(ctx context.Context, path string, data []byte) error {
	if err := s.store.Set(ctx, blobKey(path), data); err != nil {
		return fmt.Errorf("store blob %s: %w", path, err)
	}
	return nil
}

// Fetch returns the raw bytes at a storage path.
func (s *Store) Fetch(ctx context.Context, path string) ([]byte, error) {
	data, err := s.store.Get(ctx, blobKey(path))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("fetch blob %s: %w", path, err)
	}
	return data, nil
}

// Remove deletes the raw bytes at a storage path.
func (s *Store) Remove(ctx context.Context, path string) error {
	if err := s.store.Del(ctx, blobKey(path)); err != nil {
		return fmt.Errorf("remove blob %s: %w", path, err)
	}
	return nil
}

func blobKey(path string) string {
	return domain.KeyPrefix + "blob:" + path
}
