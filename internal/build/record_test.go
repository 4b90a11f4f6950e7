package build

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/goplus/lwipbuild/internal/target"
)

func TestSaveAndLoadRecord(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().Truncate(time.Second)
	rec := &Record{
		Target:    target.New("ios", "amd64", ""),
		LwIP:      "v2.1.3",
		Includes:  []string{"/p/custom", "/p/lwip/src/include"},
		Archive:   "/p/build/amd64-ios/liblwip.a",
		Bindings:  "/p/lwipbind/lwip_ios_arm64.go",
		BuildTime: now,
	}
	if err := saveRecord(dir, rec); err != nil {
		t.Fatalf("saveRecord failed: %v", err)
	}
	loaded, err := LoadRecord(dir)
	if err != nil {
		t.Fatalf("LoadRecord failed: %v", err)
	}
	if !loaded.BuildTime.Equal(now) {
		t.Errorf("BuildTime mismatch: got %v, want %v", loaded.BuildTime, now)
	}
	loaded.BuildTime = rec.BuildTime
	if diff := cmp.Diff(rec, loaded); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, recordFile+".tmp")); !os.IsNotExist(err) {
		t.Errorf("temporary record left behind: %v", err)
	}
}

func TestLoadRecord_NotExist(t *testing.T) {
	if _, err := LoadRecord(t.TempDir()); err == nil {
		t.Fatal("expected error for missing record, got nil")
	}
}

func TestLoadRecord_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, recordFile), []byte("invalid json"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if _, err := LoadRecord(dir); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}
