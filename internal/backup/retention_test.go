package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCountPolicy(t *testing.T) {
	backups := []BackupInfo{{Path: "c"}, {Path: "b"}, {Path: "a"}}

	tests := []struct {
		name string
		max  int
		want int
	}{
		{"keeps newest", 2, 2},
		{"under limit", 5, 3},
		{"zero keeps all", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &CountPolicy{MaxCount: tt.max}
			got := p.Apply(backups)
			if len(got) != tt.want {
				t.Errorf("Apply() kept %d, want %d", len(got), tt.want)
			}
			if len(got) > 0 && got[0].Path != "c" {
				t.Errorf("Apply() first = %s, want c", got[0].Path)
			}
		})
	}
}

func TestListBackups(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		path := GenerateBackupPath(dir, base.Add(time.Duration(i)*time.Hour))
		if err := WriteV2(path, &BackupFormat{Version: FormatV2, CreatedAt: base, Blobs: []Blob{{Key: "k", Value: []byte("v")}}}); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600)

	got, err := ListBackups(dir)
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListBackups() = %d entries, want 3", len(got))
	}
	if filepath.Base(got[0].Path) != "mnemosyne-backup-20260101-020000.000.json.gz" {
		t.Errorf("newest = %s", filepath.Base(got[0].Path))
	}
	if got[0].Version != FormatV2 || got[0].BlobCount != 1 {
		t.Errorf("info = %+v, want V2 with 1 blob", got[0])
	}
}

func TestListBackups_MissingDir(t *testing.T) {
	got, err := ListBackups(filepath.Join(t.TempDir(), "none"))
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListBackups() = %v, want empty", got)
	}
}

func TestApplyRetention(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		path := GenerateBackupPath(dir, base.Add(time.Duration(i)*time.Minute))
		if err := WriteV2(path, &BackupFormat{Version: FormatV2, CreatedAt: base}); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := ApplyRetention(dir, &CountPolicy{MaxCount: 2})
	if err != nil {
		t.Fatalf("ApplyRetention() error = %v", err)
	}
	if len(deleted) != 2 {
		t.Errorf("deleted %d, want 2", len(deleted))
	}

	left, _ := ListBackups(dir)
	if len(left) != 2 {
		t.Fatalf("remaining = %d, want 2", len(left))
	}
	if filepath.Base(left[1].Path) != "mnemosyne-backup-20260101-000200.000.json.gz" {
		t.Errorf("oldest kept = %s", filepath.Base(left[1].Path))
	}
}
