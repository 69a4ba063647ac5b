package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ariacc/ariac/internal/config"
)

func TestCmdRunReportsConfiguredPoolSize(t *testing.T) {
	path := writeFixture(t, `func main() -> int {
  1
}
`)
	cfg := &config.Config{Verify: "off", WorkerPoolSize: 2}
	if err := cmdRun([]string{path}, "off", false, cfg); err != nil {
		t.Fatalf("cmdRun: %v", err)
	}
}

func TestCmdBuildAndCheckAcceptEmptySearchPaths(t *testing.T) {
	path := writeFixture(t, `func main() -> int {
  1
}
`)
	cfg := config.Default()
	if err := cmdCheck([]string{path}, cfg, false); err != nil {
		t.Fatalf("cmdCheck: %v", err)
	}
	if err := cmdBuild([]string{path}, "off", cfg); err != nil {
		t.Fatalf("cmdBuild: %v", err)
	}
}

func TestCmdCheckReportEmitsStructuredReport(t *testing.T) {
	good := writeFixture(t, `func main() -> int {
  1
}
`)
	bad := writeFixture(t, `func main() -> int {
  true + 1
}
`)
	cfg := config.Default()
	if err := cmdCheck([]string{good, bad}, cfg, true); err != nil {
		t.Fatalf("cmdCheck --report: %v", err)
	}
}

func TestMainLoadsConfigFromCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte("verify: release\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.Verify != "release" {
		t.Errorf("expected verify 'release' from %s, got %q", config.FileName, cfg.Verify)
	}
}
