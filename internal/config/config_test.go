package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if info.PortSpecified {
		t.Fatalf("port should not be marked as specified")
	}
	if cfg.Input.HeaderRow != 4 || cfg.Input.SheetName != "Vehicle & Asset List" {
		t.Fatalf("unexpected input defaults: %+v", cfg.Input)
	}
	if cfg.Lookup.Concurrency != 1 {
		t.Fatalf("concurrency=%d, want 1", cfg.Lookup.Concurrency)
	}
}

func TestLoadFile_OverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
port = 9000

[lookup]
timeout_seconds = 5
concurrency = 4

[export]
valid_format = "xlsx"
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("VINAUDIT_LOOKUP_BASE_URL", "http://127.0.0.1:1/api")

	cfg, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !info.PortSpecified || cfg.Server.Port != 9000 {
		t.Fatalf("port not applied: %+v %+v", info, cfg.Server)
	}
	if got := cfg.Lookup.Timeout(); got != 5*time.Second {
		t.Fatalf("timeout=%v", got)
	}
	if cfg.Lookup.Concurrency != 4 || cfg.Export.ValidFormat != "xlsx" {
		t.Fatalf("unexpected overrides: %+v %+v", cfg.Lookup, cfg.Export)
	}
	if cfg.Lookup.BaseURL != "http://127.0.0.1:1/api" {
		t.Fatalf("env override not applied: %s", cfg.Lookup.BaseURL)
	}
	// 未出现在文件中的字段保持默认值
	if cfg.Export.Country != "US" {
		t.Fatalf("country=%q", cfg.Export.Country)
	}
}

func TestLoadFile_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nport="), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := LoadFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Lookup.Concurrency = 3
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !isPortSpecifiedInToml(data) {
		t.Fatalf("saved config should carry server.port")
	}
}

func TestEnsureDataDir(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")
	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("EnsureDataDir: %v", err)
	}
	for _, sub := range []string{"uploads", "exports"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Fatalf("missing %s: %v", sub, err)
		}
	}
}
