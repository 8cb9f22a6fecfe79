package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const blobExt = ".json"

// FileBlobStore keeps one file per key under a directory. Writes go through
// a temp file and a rename so a crash never leaves a half-written blob.
type FileBlobStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileBlobStore stores blobs under dir/blobs.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	blobDir := filepath.Join(dir, "blobs")
	if err := EnsureDataDir(blobDir); err != nil {
		return nil, err
	}
	return &FileBlobStore{dir: blobDir}, nil
}

func (s *FileBlobStore) path(key string) string {
	return filepath.Join(s.dir, key+blobExt)
}

// Get reads the blob file for key.
func (s *FileBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Put writes the blob atomically via temp file + rename.
func (s *FileBlobStore) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0600); err != nil {
		return fmt.Errorf("writing %s temp file: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob file. A missing file is not an error.
func (s *FileBlobStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Keys lists blob files, ignoring temp files and anything else.
func (s *FileBlobStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, blobExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, blobExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op.
func (s *FileBlobStore) Close() error {
	return nil
}
