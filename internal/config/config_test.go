package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"actigraphy/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "actigraphy", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "actigraphy", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Paths.DataDir != "/data" {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver by default, got %q", cfg.Database.Driver)
	}
	if cfg.Export.ReviewWorkbook {
		t.Fatal("expected review workbook disabled by default")
	}
	clock, err := cfg.DefaultSleepClock()
	if err != nil || clock != 12*time.Hour {
		t.Fatalf("expected default sleep clock 12h, got %v (%v)", clock, err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "actigraphy.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		GGIR struct {
			DefaultSleepTime string `toml:"default_sleep_time"`
			CacheEntries     int    `toml:"cache_entries"`
		} `toml:"ggir"`
		Export struct {
			ReviewWorkbook bool `toml:"review_workbook"`
		} `toml:"export"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.GGIR.DefaultSleepTime = "03:30"
	custom.GGIR.CacheEntries = 4
	custom.Export.ReviewWorkbook = true
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("expected data dir from file, got %q", cfg.Paths.DataDir)
	}
	if cfg.GGIR.CacheEntries != 4 {
		t.Fatalf("expected cache entries 4, got %d", cfg.GGIR.CacheEntries)
	}
	if !cfg.Export.ReviewWorkbook {
		t.Fatal("expected review workbook enabled")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json format, got %q", cfg.Logging.Format)
	}
	clock, err := cfg.DefaultSleepClock()
	if err != nil || clock != 3*time.Hour+30*time.Minute {
		t.Fatalf("unexpected default sleep clock %v (%v)", clock, err)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "actigraphy.toml")
	contents := "[paths]\ndata_dir = \"/from/file\"\n\n[database]\ndriver = \"postgres\"\ndsn = \"postgres://file\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	envData := filepath.Join(tempDir, "env-data")
	t.Setenv("ACTIGRAPHY_DATA_DIR", envData)
	t.Setenv("ACTIGRAPHY_DATABASE_DSN", "postgres://env")
	t.Setenv("ACTIGRAPHY_LOG_LEVEL", "DEBUG")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.DataDir != envData {
		t.Errorf("expected data dir from env, got %q", cfg.Paths.DataDir)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Errorf("expected dsn from env, got %q", cfg.Database.DSN)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level from env, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "actigraphy.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSample(t *testing.T) {
	t.Setenv("ACTIGRAPHY_DATABASE_DSN", "")
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "default_sleep_time") {
		t.Fatalf("sample config missing ggir section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Database.Driver != "" || cfg.GGIR.DefaultSleepTime != "12:00:00" {
		t.Fatalf("unexpected sample values: %+v", cfg)
	}

	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if loaded.Database.Driver != "sqlite" {
		t.Fatalf("expected sample to resolve to sqlite, got %q", loaded.Database.Driver)
	}
}

func TestDatabaseDSNFromEnvSelectsPostgres(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("ACTIGRAPHY_DATABASE_DSN", "postgres://x@localhost/db")

	cfg, _, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected no config file")
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://x@localhost/db" {
		t.Fatalf("expected postgres from env dsn, got driver=%q dsn=%q", cfg.Database.Driver, cfg.Database.DSN)
	}

	configPath := filepath.Join(t.TempDir(), "actigraphy.toml")
	if err := os.WriteFile(configPath, []byte("[database]\ndriver = \"sqlite\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("explicit driver should win over env dsn, got %q", cfg.Database.Driver)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}

	cfg = config.Default()
	cfg.Database.Driver = "postgres"
	cfg.Database.DSN = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when postgres has no dsn")
	}

	cfg = config.Default()
	cfg.GGIR.DefaultSleepTime = "noon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unparsable default sleep time")
	}

	cfg = config.Default()
	cfg.GGIR.CacheEntries = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative cache size")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
