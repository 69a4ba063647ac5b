package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultHasOffVerification(t *testing.T) {
	cfg := Default()
	if cfg.Verify != "off" {
		t.Errorf("expected default verify mode 'off', got %q", cfg.Verify)
	}
	if cfg.WorkerPoolSize != 0 {
		t.Errorf("expected default worker pool size 0 (runtime default), got %d", cfg.WorkerPoolSize)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ariac.yaml")
	content := "verify: release\nworker_pool_size: 4\nsearch_paths:\n  - /opt/aria/lib\n  - ./vendor\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Verify != "release" {
		t.Errorf("expected verify 'release', got %q", cfg.Verify)
	}
	if cfg.WorkerPoolSize != 4 {
		t.Errorf("expected worker pool size 4, got %d", cfg.WorkerPoolSize)
	}
	if len(cfg.SearchPaths) != 2 || cfg.SearchPaths[0] != "/opt/aria/lib" {
		t.Errorf("unexpected search paths: %v", cfg.SearchPaths)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/ariac.yaml"); err == nil {
		t.Errorf("expected an error loading a missing file")
	}
}

func TestLoadFromDirFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.Verify != "off" {
		t.Errorf("expected default config when no file present, got %+v", cfg)
	}
}

func TestLoadFromDirReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("verify: debug\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.Verify != "debug" {
		t.Errorf("expected verify 'debug', got %q", cfg.Verify)
	}
}
