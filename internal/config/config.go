// Package config provides unified configuration loading for mnemosyne.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/store"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the data directory.
const FileName = "config.yaml"

// MnemosyneConfig contains all mnemosyne configuration settings.
type MnemosyneConfig struct {
	// Storage selects where runs and assessments are persisted.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Puzzle contains settings for the puzzle engine front ends.
	Puzzle PuzzleConfig `json:"puzzle" yaml:"puzzle"`

	// Assessment contains settings for the self-assessment engine.
	Assessment AssessmentConfig `json:"assessment" yaml:"assessment"`

	// Backup contains backup rotation settings.
	Backup BackupConfig `json:"backup" yaml:"backup"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// StorageConfig configures the blob store.
type StorageConfig struct {
	// Backend is "sqlite" (default), "file" or "memory".
	Backend string `json:"backend" yaml:"backend"`

	// Dir overrides the data directory. Empty means ~/.mnemosyne.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// PuzzleConfig configures puzzle presentation.
type PuzzleConfig struct {
	// AdvanceDelay is the pause before the next puzzle in the TUI.
	AdvanceDelay time.Duration `json:"advance_delay" yaml:"advance_delay"`

	// Debug starts the TUI with the developer panel open.
	Debug bool `json:"debug" yaml:"debug"`
}

// AssessmentConfig configures the self-assessment engine.
type AssessmentConfig struct {
	// Mode is "introspective" (default) or "rapid".
	Mode constants.AssessMode `json:"mode" yaml:"mode"`

	// ChartSize is the edge length in pixels of exported charts.
	ChartSize int `json:"chart_size" yaml:"chart_size"`
}

// BackupConfig configures backup retention.
type BackupConfig struct {
	// MaxCount is how many backup files to keep. 0 keeps all.
	MaxCount int `json:"max_count" yaml:"max_count"`
}

// LoggingConfig configures mnemosyne's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables trace logging to <data dir>/trace.jsonl.
	// "trace" additionally records full puzzle and payload content.
	Level string `json:"level" yaml:"level"`
}

// Default returns a MnemosyneConfig with sensible defaults.
func Default() *MnemosyneConfig {
	return &MnemosyneConfig{
		Storage: StorageConfig{
			Backend: store.BackendSQLite,
		},
		Puzzle: PuzzleConfig{
			AdvanceDelay: constants.DefaultAdvanceDelay,
		},
		Assessment: AssessmentConfig{
			Mode:      constants.ModeIntrospective,
			ChartSize: constants.DefaultChartSize,
		},
		Backup: BackupConfig{
			MaxCount: constants.MaxBackupRotation,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.mnemosyne/config.yaml.
func DefaultPath() (string, error) {
	dir, err := store.GlobalDataPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.mnemosyne/config.yaml -> environment variables
func Load() (*MnemosyneConfig, error) {
	path, err := DefaultPath()
	if err != nil {
		// No home directory: defaults plus environment
		config := Default()
		applyEnvOverrides(config)
		return config, nil
	}
	return LoadPath(path)
}

// LoadPath is Load with an explicit config file. A missing file is not an
// error.
func LoadPath(path string) (*MnemosyneConfig, error) {
	config := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		fileConfig, loadErr := LoadFromFile(path)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*MnemosyneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Storage.Dir = expandEnvVars(config.Storage.Dir)

	return config, nil
}

// Save writes the configuration to path, creating its directory.
func (c *MnemosyneConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *MnemosyneConfig) Validate() error {
	validBackends := map[string]bool{store.BackendSQLite: true, store.BackendFile: true, store.BackendMemory: true}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage backend: %s (valid: sqlite, file, memory)", c.Storage.Backend)
	}

	if c.Puzzle.AdvanceDelay < 0 {
		return fmt.Errorf("advance_delay must be non-negative, got %v", c.Puzzle.AdvanceDelay)
	}

	if !c.Assessment.Mode.Valid() {
		return fmt.Errorf("invalid assessment mode: %s (valid: introspective, rapid)", c.Assessment.Mode)
	}

	if c.Assessment.ChartSize <= 0 {
		return fmt.Errorf("chart_size must be positive, got %d", c.Assessment.ChartSize)
	}

	if c.Backup.MaxCount < 0 {
		return fmt.Errorf("max_count must be non-negative, got %d", c.Backup.MaxCount)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// Keys lists every dotted key understood by Get and Set.
func Keys() []string {
	return []string{
		"storage.backend",
		"storage.dir",
		"puzzle.advance_delay",
		"puzzle.debug",
		"assessment.mode",
		"assessment.chart_size",
		"backup.max_count",
		"logging.level",
	}
}

// Get retrieves a configuration value by dot-notation key.
func (c *MnemosyneConfig) Get(key string) (interface{}, bool) {
	switch key {
	case "storage.backend":
		return c.Storage.Backend, true
	case "storage.dir":
		return c.Storage.Dir, true
	case "puzzle.advance_delay":
		return c.Puzzle.AdvanceDelay.String(), true
	case "puzzle.debug":
		return c.Puzzle.Debug, true
	case "assessment.mode":
		return c.Assessment.Mode.String(), true
	case "assessment.chart_size":
		return c.Assessment.ChartSize, true
	case "backup.max_count":
		return c.Backup.MaxCount, true
	case "logging.level":
		return c.Logging.Level, true
	default:
		return nil, false
	}
}

// Set sets a configuration value by dot-notation key. The result is
// validated before it is applied, so a failed Set leaves c unchanged.
func (c *MnemosyneConfig) Set(key, value string) error {
	next := *c
	switch key {
	case "storage.backend":
		next.Storage.Backend = value
	case "storage.dir":
		next.Storage.Dir = value
	case "puzzle.advance_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		next.Puzzle.AdvanceDelay = d
	case "puzzle.debug":
		next.Puzzle.Debug = value == "true" || value == "1"
	case "assessment.mode":
		next.Assessment.Mode = constants.AssessMode(value)
	case "assessment.chart_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid chart size: %s (must be an integer)", value)
		}
		next.Assessment.ChartSize = n
	case "backup.max_count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max count: %s (must be an integer)", value)
		}
		next.Backup.MaxCount = n
	case "logging.level":
		next.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *MnemosyneConfig) {
	if v := os.Getenv("MNEMOSYNE_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}

	if v := os.Getenv("MNEMOSYNE_DATA_DIR"); v != "" {
		config.Storage.Dir = v
	}

	if v := os.Getenv("MNEMOSYNE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("MNEMOSYNE_ADVANCE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Puzzle.AdvanceDelay = d
		}
	}

	if v := os.Getenv("MNEMOSYNE_ASSESS_MODE"); v != "" {
		config.Assessment.Mode = constants.AssessMode(v)
	}

	if v := os.Getenv("MNEMOSYNE_CHART_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Assessment.ChartSize = n
		}
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
