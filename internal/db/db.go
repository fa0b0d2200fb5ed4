// Package db defines the storage facade the repositories are built on.
// Consumers depend on the narrow sub-interfaces, not on Store itself.
package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	SetStore
	KVStore
	Locker
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based row operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SetStore provides set-based secondary index operations.
type SetStore interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// KVStore provides plain key-value operations (blob payloads, caches).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Locker provides advisory leases used to serialize same-document pipeline runs.
type Locker interface {
	// AcquireLease sets key to token iff it is absent, with a TTL so a
	// crashed holder cannot wedge the document forever.
	AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, key string) error
}
