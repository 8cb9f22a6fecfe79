package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirName is the directory under the user's home that holds saves,
// config and traces.
const DataDirName = ".mnemosyne"

// GlobalDataPath returns the path to the global data directory.
// On Unix: ~/.mnemosyne
// On Windows: %USERPROFILE%\.mnemosyne
func GlobalDataPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DataDirName), nil
}

// ResolveDataDir returns dir when set, otherwise the global data path.
func ResolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return GlobalDataPath()
}

// EnsureDataDir creates dir if it doesn't exist.
func EnsureDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
