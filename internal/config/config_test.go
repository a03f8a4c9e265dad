package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/existflow/bizflow/internal/logger"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Tasks.StatusPolicy != "strict" || cfg.Auth.Username != "admin" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "log:\n  level: debug\nstorage:\n  driver: memory\ntasks:\n  status_policy: free\nai:\n  timeout_sec: 5\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BIZFLOW_DB_DRIVER", "postgres")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Fatalf("env did not override driver: %s", cfg.Storage.Driver)
	}
	if cfg.Tasks.StatusPolicy != "free" || cfg.AI.TimeoutSec != 5 {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.AI.MaxTokens != 1024 {
		t.Fatalf("defaults not kept for unset keys: %d", cfg.AI.MaxTokens)
	}
	if cfg.LoggerConfig().Level != logger.DEBUG {
		t.Fatalf("log level not mapped")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv("BIZFLOW_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	cfg.Tasks.DefaultProject = "Market Research"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	again, err := Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.Tasks.DefaultProject != "Market Research" {
		t.Fatalf("default project not persisted: %+v", again.Tasks)
	}
}

func TestSaveKeepsEnvOverridesOutOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: warn\ntasks:\n  status_policy: strict\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BIZFLOW_STATUS_POLICY", "free")
	t.Setenv("BIZFLOW_DB_DSN", "/tmp/elsewhere.db")
	t.Setenv("BIZFLOW_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Tasks.StatusPolicy != "free" {
		t.Fatalf("env override not applied: %s", cfg.Tasks.StatusPolicy)
	}
	cfg.Tasks.DefaultProject = "Legal"
	cfg.Log.Level = "ERROR"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	// a second save must not leak the overrides either
	if err := cfg.Save(); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	os.Unsetenv("BIZFLOW_STATUS_POLICY")
	os.Unsetenv("BIZFLOW_DB_DSN")
	os.Unsetenv("BIZFLOW_LOG_LEVEL")

	again, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.Tasks.StatusPolicy != "strict" {
		t.Fatalf("status policy override persisted: %s", again.Tasks.StatusPolicy)
	}
	if again.Storage.DSN != DefaultConfig().Storage.DSN {
		t.Fatalf("dsn override persisted: %s", again.Storage.DSN)
	}
	if again.Tasks.DefaultProject != "Legal" {
		t.Fatalf("explicit change lost: %+v", again.Tasks)
	}
	if again.Log.Level != "ERROR" {
		t.Fatalf("explicit log level lost: %s", again.Log.Level)
	}
}

func TestBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("log: [unterminated"), 0600)
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}
