package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Missing(t *testing.T) {
	t.Setenv("GRIDPATCH_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}
	if cfg != (Config{}) {
		t.Fatalf("Load with no file = %+v, want zero config", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("GRIDPATCH_CONFIG_DIR", t.TempDir())

	if err := Save(Config{KeepBackup: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.KeepBackup {
		t.Fatalf("KeepBackup not persisted: %+v", cfg)
	}

	// saving again replaces, not appends
	if err := Save(Config{}); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	cfg, err = Load()
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if cfg.KeepBackup {
		t.Fatalf("stale value after overwrite: %+v", cfg)
	}
}

func TestLoad_ConfigFileIsDirectory(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("GRIDPATCH_CONFIG_DIR", tmp)

	cfgPath := filepath.Join(tmp, "config.json")
	if err := os.Mkdir(cfgPath, 0o755); err != nil {
		t.Fatalf("setup config dir: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected read error when config file is a directory")
	} else if os.IsNotExist(err) {
		t.Fatalf("expected non-ENOENT error, got %v", err)
	}
}
