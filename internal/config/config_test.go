package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/mnemosyne/internal/constants"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Storage.Backend != "sqlite" {
		t.Errorf("expected Storage.Backend 'sqlite', got '%s'", config.Storage.Backend)
	}
	if config.Puzzle.AdvanceDelay != 900*time.Millisecond {
		t.Errorf("expected AdvanceDelay 900ms, got %v", config.Puzzle.AdvanceDelay)
	}
	if config.Puzzle.Debug {
		t.Error("expected Puzzle.Debug to be false by default")
	}
	if config.Assessment.Mode != constants.ModeIntrospective {
		t.Errorf("expected Assessment.Mode 'introspective', got '%s'", config.Assessment.Mode)
	}
	if config.Assessment.ChartSize != 640 {
		t.Errorf("expected ChartSize 640, got %d", config.Assessment.ChartSize)
	}
	if config.Backup.MaxCount != 10 {
		t.Errorf("expected Backup.MaxCount 10, got %d", config.Backup.MaxCount)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  backend: file
  dir: ${MNEMOSYNE_TEST_DIR}/data

puzzle:
  advance_delay: 250ms
  debug: true

assessment:
  mode: rapid
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("MNEMOSYNE_TEST_DIR", "/srv")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Storage.Backend != "file" {
		t.Errorf("expected Backend 'file', got '%s'", config.Storage.Backend)
	}
	if config.Storage.Dir != "/srv/data" {
		t.Errorf("expected Dir '/srv/data', got '%s'", config.Storage.Dir)
	}
	if config.Puzzle.AdvanceDelay != 250*time.Millisecond {
		t.Errorf("expected AdvanceDelay 250ms, got %v", config.Puzzle.AdvanceDelay)
	}
	if !config.Puzzle.Debug {
		t.Error("expected Debug to be true")
	}
	if config.Assessment.Mode != constants.ModeRapid {
		t.Errorf("expected Mode 'rapid', got '%s'", config.Assessment.Mode)
	}
	// Unset sections keep defaults
	if config.Assessment.ChartSize != 640 {
		t.Errorf("expected default ChartSize 640, got %d", config.Assessment.ChartSize)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected default Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("storage: [unterminated"), 0600)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadPath_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if config.Storage.Backend != "sqlite" {
		t.Errorf("expected default backend, got %s", config.Storage.Backend)
	}
}

func TestLoad_UsesHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	dir := filepath.Join(home, ".mnemosyne")
	os.MkdirAll(dir, 0700)
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("logging:\n  level: debug\n"), 0600)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MNEMOSYNE_STORAGE_BACKEND", "memory")
	t.Setenv("MNEMOSYNE_DATA_DIR", "/var/lib/mnemosyne")
	t.Setenv("MNEMOSYNE_LOG_LEVEL", "trace")
	t.Setenv("MNEMOSYNE_ADVANCE_DELAY", "2s")
	t.Setenv("MNEMOSYNE_ASSESS_MODE", "rapid")
	t.Setenv("MNEMOSYNE_CHART_SIZE", "320")

	config := Default()
	applyEnvOverrides(config)

	if config.Storage.Backend != "memory" {
		t.Errorf("expected Backend 'memory', got '%s'", config.Storage.Backend)
	}
	if config.Storage.Dir != "/var/lib/mnemosyne" {
		t.Errorf("expected Dir override, got '%s'", config.Storage.Dir)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("expected Level 'trace', got '%s'", config.Logging.Level)
	}
	if config.Puzzle.AdvanceDelay != 2*time.Second {
		t.Errorf("expected AdvanceDelay 2s, got %v", config.Puzzle.AdvanceDelay)
	}
	if config.Assessment.Mode != constants.ModeRapid {
		t.Errorf("expected Mode 'rapid', got '%s'", config.Assessment.Mode)
	}
	if config.Assessment.ChartSize != 320 {
		t.Errorf("expected ChartSize 320, got %d", config.Assessment.ChartSize)
	}
}

func TestApplyEnvOverrides_IgnoresUnparseable(t *testing.T) {
	t.Setenv("MNEMOSYNE_ADVANCE_DELAY", "soon")
	t.Setenv("MNEMOSYNE_CHART_SIZE", "big")

	config := Default()
	applyEnvOverrides(config)

	if config.Puzzle.AdvanceDelay != 900*time.Millisecond {
		t.Errorf("expected AdvanceDelay unchanged, got %v", config.Puzzle.AdvanceDelay)
	}
	if config.Assessment.ChartSize != 640 {
		t.Errorf("expected ChartSize unchanged, got %d", config.Assessment.ChartSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*MnemosyneConfig)
		wantErr string
	}{
		{"valid default", func(c *MnemosyneConfig) {}, ""},
		{"unknown backend", func(c *MnemosyneConfig) { c.Storage.Backend = "redis" }, "invalid storage backend"},
		{"negative delay", func(c *MnemosyneConfig) { c.Puzzle.AdvanceDelay = -time.Second }, "advance_delay"},
		{"zero delay ok", func(c *MnemosyneConfig) { c.Puzzle.AdvanceDelay = 0 }, ""},
		{"unknown mode", func(c *MnemosyneConfig) { c.Assessment.Mode = "deep" }, "invalid assessment mode"},
		{"zero chart size", func(c *MnemosyneConfig) { c.Assessment.ChartSize = 0 }, "chart_size"},
		{"negative max count", func(c *MnemosyneConfig) { c.Backup.MaxCount = -1 }, "max_count"},
		{"bad log level", func(c *MnemosyneConfig) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"empty log level ok", func(c *MnemosyneConfig) { c.Logging.Level = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  interface{}
	}{
		{"storage.backend", "file", "file"},
		{"storage.dir", "/tmp/m", "/tmp/m"},
		{"puzzle.advance_delay", "1.5s", "1.5s"},
		{"puzzle.debug", "true", true},
		{"assessment.mode", "rapid", "rapid"},
		{"assessment.chart_size", "800", 800},
		{"backup.max_count", "3", 3},
		{"logging.level", "debug", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			config := Default()
			if err := config.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%s, %s) error = %v", tt.key, tt.value, err)
			}
			got, ok := config.Get(tt.key)
			if !ok {
				t.Fatalf("Get(%s) not found", tt.key)
			}
			if got != tt.want {
				t.Errorf("Get(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSet_RejectsInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"storage.backend", "redis"},
		{"puzzle.advance_delay", "later"},
		{"assessment.mode", "deep"},
		{"assessment.chart_size", "-5"},
		{"assessment.chart_size", "wide"},
		{"backup.max_count", "many"},
		{"logging.level", "loud"},
		{"no.such.key", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			config := Default()
			if err := config.Set(tt.key, tt.value); err == nil {
				t.Errorf("Set(%s, %s) expected error", tt.key, tt.value)
			}
			// Failed Set leaves the config untouched
			if err := config.Validate(); err != nil {
				t.Errorf("config invalid after rejected Set: %v", err)
			}
		})
	}
}

func TestGet_UnknownKey(t *testing.T) {
	if _, ok := Default().Get("llm.provider"); ok {
		t.Error("expected unknown key to be reported as not found")
	}
	for _, k := range Keys() {
		if _, ok := Default().Get(k); !ok {
			t.Errorf("Keys() lists %s but Get does not know it", k)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := Default()
	if err := config.Set("assessment.mode", "rapid"); err != nil {
		t.Fatal(err)
	}
	if err := config.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Assessment.Mode != constants.ModeRapid {
		t.Errorf("expected saved Mode 'rapid', got '%s'", loaded.Assessment.Mode)
	}
	if loaded.Puzzle.AdvanceDelay != 900*time.Millisecond {
		t.Errorf("expected saved AdvanceDelay 900ms, got %v", loaded.Puzzle.AdvanceDelay)
	}
}
