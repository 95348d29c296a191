package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dvolkovs/filevault/internal/common"
)

// DiskStore keeps blobs as flat files under a configured root directory.
// Keys are generated uuids, so no key accepted from our own metadata can
// escape the root; anything else is rejected outright.
type DiskStore struct {
	root string
}

// NewDiskStore ensures root exists and returns a store over it.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// path resolves key inside the root, refusing anything that is not a
// generated uuid.
func (s *DiskStore) path(key string) (string, error) {
	if uuid.Validate(key) != nil {
		return "", common.ErrNotFound
	}
	return filepath.Join(s.root, key), nil
}

// derivedPath resolves the width variant of key.
func (s *DiskStore) derivedPath(key string, width int) (string, error) {
	if uuid.Validate(key) != nil || width <= 0 {
		return "", common.ErrNotFound
	}
	return filepath.Join(s.root, DerivedKey(key, width)), nil
}

// Write persists data under a fresh key. The bytes land in a temp file
// first and are renamed into place, so readers never observe a partial
// blob.
func (s *DiskStore) Write(ctx context.Context, data []byte) (string, error) {
	key := uuid.NewString()

	target, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := s.writeAtomic(target, data); err != nil {
		return "", err
	}
	return key, nil
}

// WriteDerived persists a resized variant. Overwriting an existing variant
// is allowed; re-running a job must be safe.
func (s *DiskStore) WriteDerived(ctx context.Context, key string, width int, data []byte) error {
	target, err := s.derivedPath(key, width)
	if err != nil {
		return err
	}
	return s.writeAtomic(target, data)
}

func (s *DiskStore) writeAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing blob: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming blob: %w", err)
	}
	return nil
}

// Read returns the original bytes stored under key.
func (s *DiskStore) Read(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return s.readFile(p)
}

// ReadDerived returns the width variant of key.
func (s *DiskStore) ReadDerived(ctx context.Context, key string, width int) ([]byte, error) {
	p, err := s.derivedPath(key, width)
	if err != nil {
		return nil, err
	}
	return s.readFile(p)
}

func (s *DiskStore) readFile(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}
