// Package blob persists raw file bytes under generated storage keys.
// Two interchangeable backends exist: a local directory and an
// S3-compatible object store. The metadata record owning a key is the
// single source of truth for the blob's existence.
package blob

import (
	"context"
	"strconv"
)

// Store writes and reads blobs. Write generates the key; callers never
// choose one. Derived blobs are resized variants addressed by the original
// key plus a width suffix.
type Store interface {
	Write(ctx context.Context, data []byte) (key string, err error)
	Read(ctx context.Context, key string) ([]byte, error)
	WriteDerived(ctx context.Context, key string, width int, data []byte) error
	ReadDerived(ctx context.Context, key string, width int) ([]byte, error)
}

// DerivedKey renders the persisted-layout name of a derived blob:
// <storageKey>_<width>. Retrieval depends on this exact shape.
func DerivedKey(key string, width int) string {
	return key + "_" + strconv.Itoa(width)
}
