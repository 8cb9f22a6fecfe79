// Package store defines the BlobStore interface the engines persist their
// state through, plus SQLite, file and in-memory implementations.
//
// Each engine owns a handful of fixed keys (see internal/constants) and
// reads/writes one JSON document per key. There are no partial updates:
// every write replaces the whole blob.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written or was
// deleted.
var ErrNotFound = errors.New("blob not found")

// ErrCorrupt is wrapped by GetJSON when a stored blob does not decode.
var ErrCorrupt = errors.New("blob does not decode")

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// BlobStore is a flat key-value store of JSON documents.
type BlobStore interface {
	// Get returns the stored bytes for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every stored key in lexical order.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}

// Open creates the store for the given backend rooted at dir.
// The memory backend ignores dir.
func Open(backend, dir string) (BlobStore, error) {
	switch backend {
	case BackendSQLite, "":
		return NewSQLiteBlobStore(dir)
	case BackendFile:
		return NewFileBlobStore(dir)
	case BackendMemory:
		return NewMemoryBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// GetJSON decodes the blob under key into v. It reports false with a nil
// error when the key does not exist. A blob that fails to decode is returned
// as an error wrapping ErrCorrupt so callers can treat it as missing.
func GetJSON(ctx context.Context, s BlobStore, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w: %w", key, ErrCorrupt, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, s BlobStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}

// validateKey rejects keys that cannot double as file names.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return fmt.Errorf("invalid key %q: only letters, digits, '_', '-' and '.' are allowed", key)
		}
	}
	if key == "." || key == ".." {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}
