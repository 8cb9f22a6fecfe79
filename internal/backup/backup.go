// Package backup exports every blob in a store to a checksummed,
// compressed file and restores it again.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nvandessel/mnemosyne/internal/store"
)

// BackupFormat is the payload of a backup file.
type BackupFormat struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Blobs     []Blob    `json:"blobs"`
}

// Blob is one stored key and its raw bytes.
type Blob struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// DirName is the backup directory under the data directory.
const DirName = "backups"

// filePrefix starts every generated backup file name.
const filePrefix = "mnemosyne-backup-"

// DefaultBackupDir returns dataDir/backups.
func DefaultBackupDir(dataDir string) string {
	return filepath.Join(dataDir, DirName)
}

// GenerateBackupPath returns a timestamped file name in dir.
func GenerateBackupPath(dir string, now time.Time) string {
	return filepath.Join(dir, filePrefix+now.UTC().Format("20060102-150405.000")+".json.gz")
}

// Export reads every blob from bs in key order.
func Export(ctx context.Context, bs store.BlobStore, now time.Time) (*BackupFormat, error) {
	keys, err := bs.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	b := &BackupFormat{Version: FormatV2, CreatedAt: now.UTC(), Blobs: make([]Blob, 0, len(keys))}
	for _, k := range keys {
		v, err := bs.Get(ctx, k)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", k, err)
		}
		b.Blobs = append(b.Blobs, Blob{Key: k, Value: v})
	}
	return b, nil
}

// Backup exports bs to outputPath in the V2 format.
func Backup(ctx context.Context, bs store.BlobStore, outputPath string, now time.Time) (*BackupFormat, error) {
	b, err := Export(ctx, bs, now)
	if err != nil {
		return nil, err
	}
	if err := WriteV2(outputPath, b); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}
	return b, nil
}

// RestoreMode controls how restore treats data already in the store.
type RestoreMode string

const (
	// RestoreMerge keeps existing keys and only adds missing ones.
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace makes the store match the backup exactly.
	RestoreReplace RestoreMode = "replace"
)

// Valid reports whether m is a known mode.
func (m RestoreMode) Valid() bool {
	return m == RestoreMerge || m == RestoreReplace
}

// RestoreResult counts what a restore did.
type RestoreResult struct {
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
	Removed  int `json:"removed"`
}

// Restore loads inputPath into bs.
func Restore(ctx context.Context, bs store.BlobStore, inputPath string, mode RestoreMode) (*RestoreResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid restore mode: %s (valid: merge, replace)", mode)
	}

	b, err := ReadBackup(inputPath)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{}
	inBackup := make(map[string]bool, len(b.Blobs))
	for _, blob := range b.Blobs {
		inBackup[blob.Key] = true

		if mode == RestoreMerge {
			_, err := bs.Get(ctx, blob.Key)
			if err == nil {
				result.Skipped++
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("failed to check %s: %w", blob.Key, err)
			}
		}

		if err := bs.Put(ctx, blob.Key, blob.Value); err != nil {
			return nil, fmt.Errorf("failed to restore %s: %w", blob.Key, err)
		}
		result.Restored++
	}

	if mode == RestoreReplace {
		keys, err := bs.Keys(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list keys: %w", err)
		}
		for _, k := range keys {
			if inBackup[k] {
				continue
			}
			if err := bs.Delete(ctx, k); err != nil {
				return nil, fmt.Errorf("failed to remove %s: %w", k, err)
			}
			result.Removed++
		}
	}

	return result, nil
}
