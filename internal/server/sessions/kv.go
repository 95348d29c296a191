// Package sessions issues, resolves and revokes the opaque bearer tokens
// backing authenticated sessions. Tokens live only in an expiring
// key-value store; there is no durable session record.
package sessions

import (
	"context"
	"time"
)

// KV is the expiring key-value store a Manager runs against. Get returns
// common.ErrNotFound for keys that are absent or have expired.
type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
