package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// chdirTemp runs the test from an empty directory so no .env is picked up.
func chdirTemp(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Scraper.Retries != 2 || cfg.Scraper.Timeout != 5*time.Second || cfg.Scraper.RetryPause != time.Millisecond {
		t.Errorf("unexpected scraper defaults: %+v", cfg.Scraper)
	}
	if cfg.Scraper.PagePause != 10*time.Millisecond || cfg.Batch.InstrumentPause != 10*time.Millisecond {
		t.Errorf("unexpected pause defaults: %v, %v", cfg.Scraper.PagePause, cfg.Batch.InstrumentPause)
	}
	if cfg.Batch.PeriodDays != 10 || !cfg.Batch.Adjust {
		t.Errorf("unexpected batch defaults: %+v", cfg.Batch)
	}
}

func TestLoad_Env(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "9090")
	t.Setenv("RETRIES", "5")
	t.Setenv("TIMEOUT", "2s")
	t.Setenv("ADJUST", "false")
	t.Setenv("PERIOD_DAYS", "30")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" || cfg.Scraper.Retries != 5 || cfg.Scraper.Timeout != 2*time.Second {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Batch.Adjust || cfg.Batch.PeriodDays != 30 {
		t.Errorf("batch env not applied: %+v", cfg.Batch)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("RETRIES", "three")
	t.Setenv("TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scraper.Retries != 2 || cfg.Scraper.Timeout != 5*time.Second {
		t.Errorf("expected defaults for unparseable values, got %+v", cfg.Scraper)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")
	// godotenv never overrides a variable that is already set, even to "".
	t.Setenv("OUT_DIR", "")
	_ = os.Unsetenv("OUT_DIR")
	if err := os.WriteFile(".env", []byte("OUT_DIR=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OutDir != "from-dotenv" {
		t.Errorf("OutDir = %q, want from-dotenv", cfg.OutDir)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	chdirTemp(t)
	path := writeTempFile(t, `
port: "7000"
scraper:
  retries: 4
  page_pause: 250ms
batch:
  period_days: 20
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7001" {
		t.Errorf("env should override file, Port = %q", cfg.Port)
	}
	if cfg.Scraper.Retries != 4 || cfg.Scraper.PagePause != 250*time.Millisecond || cfg.Batch.PeriodDays != 20 {
		t.Errorf("file not applied: %+v", cfg)
	}
	if cfg.Scraper.Timeout != 5*time.Second {
		t.Errorf("unset file keys should keep defaults, Timeout = %v", cfg.Scraper.Timeout)
	}
}

func TestLoadFile_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_ENDPOINT", "http://127.0.0.1:9999/history")
	path := writeTempFile(t, `
scraper:
  endpoint: ${TEST_ENDPOINT}
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Scraper.Endpoint != "http://127.0.0.1:9999/history" {
		t.Errorf("Endpoint = %q", cfg.Scraper.Endpoint)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "http" }, "port must be between 1 and 65535"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "port must be between 1 and 65535"},
		{"empty db path", func(c *Config) { c.DBPath = "" }, "db_path is required"},
		{"empty out dir", func(c *Config) { c.OutDir = "" }, "out_dir is required"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level must be one of"},
		{"empty endpoint", func(c *Config) { c.Scraper.Endpoint = "" }, "scraper.endpoint is required"},
		{"relative endpoint", func(c *Config) { c.Scraper.Endpoint = "/history" }, "scraper.endpoint must be an absolute"},
		{"negative retries", func(c *Config) { c.Scraper.Retries = -1 }, "scraper.retries must be >= 0"},
		{"zero timeout", func(c *Config) { c.Scraper.Timeout = 0 }, "scraper.timeout must be > 0"},
		{"negative page pause", func(c *Config) { c.Scraper.PagePause = -time.Second }, "scraper.page_pause must be >= 0"},
		{"zero period", func(c *Config) { c.Batch.PeriodDays = 0 }, "batch.period_days must be >= 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
