package ports

import "context"

// IdempotencyStore remembers which resource a client-supplied key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string) (resourceID string, found bool, err error)
	Remember(ctx context.Context, scope, key, resourceID string) error
}
