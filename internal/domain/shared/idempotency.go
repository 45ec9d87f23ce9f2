package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that have already been claimed, so a
// retried request carrying the same key is recognised as a duplicate.
type IdempotencyStore interface {
	// Claim marks key as taken for ttl. It returns false if the key was
	// already claimed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a claimed key, used when the guarded operation failed
	// and may be retried.
	Release(ctx context.Context, key string) error

	// Complete stores the outcome of the guarded operation under a claimed
	// key and keeps the key taken for ttl.
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Result returns the outcome stored by Complete. It is empty while the
	// key is claimed but not completed, or not claimed at all.
	Result(ctx context.Context, key string) (string, error)

	// Close releases resources held by the store
	Close() error
}
