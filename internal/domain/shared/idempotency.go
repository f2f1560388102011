package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied idempotency keys so a retried
// mutating request is not executed twice.
type IdempotencyStore interface {
	// Reserve claims key for ttl. It returns false if the key is already held.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees key so the request can be retried, used when the
	// request failed before committing anything.
	Release(ctx context.Context, key string) error
	Close() error
}
