package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":8000" || cfg.LogFile != "output.log" || cfg.LogLevel != "info" {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectorcache.yaml")
	if err := os.WriteFile(path, []byte("listenAddr: \":9000\"\nlogLevel: \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":9000" || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LogFile != "output.log" {
		t.Errorf("cfg.LogFile = %q, want default output.log preserved", cfg.LogFile)
	}
}

func TestRestoreDBReadFromEnvironment(t *testing.T) {
	t.Setenv("RESTORE_DB", "1")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.RestoreDB {
		t.Errorf("RestoreDB = false, want true when RESTORE_DB is set")
	}
}
