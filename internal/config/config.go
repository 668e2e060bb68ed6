package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ahmethakanbesel/yahoojp-history/internal/batch"
	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
	"github.com/ahmethakanbesel/yahoojp-history/internal/scraper"
	"github.com/ahmethakanbesel/yahoojp-history/internal/scraper/yahoojp"
)

type Config struct {
	Port     string        `yaml:"port"`
	DBPath   string        `yaml:"db_path"`
	OutDir   string        `yaml:"out_dir"`
	LogLevel string        `yaml:"log_level"`
	Scraper  ScraperConfig `yaml:"scraper"`
	Batch    BatchConfig   `yaml:"batch"`
}

type ScraperConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Retries    int           `yaml:"retries"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryPause time.Duration `yaml:"retry_pause"`
	PagePause  time.Duration `yaml:"page_pause"`
}

type BatchConfig struct {
	InstrumentPause time.Duration `yaml:"instrument_pause"`
	PeriodDays      int           `yaml:"period_days"`
	Adjust          bool          `yaml:"adjust"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:     "8080",
		DBPath:   "yahoojp.db",
		OutDir:   batch.DefaultOutputDir,
		LogLevel: "info",
		Scraper: ScraperConfig{
			Endpoint:   yahoojp.DefaultEndpoint,
			Retries:    scraper.DefaultRetries,
			Timeout:    scraper.DefaultTimeout,
			RetryPause: scraper.DefaultRetryPause,
			PagePause:  scraper.DefaultPagePause,
		},
		Batch: BatchConfig{
			InstrumentPause: batch.DefaultInstrumentPause,
			PeriodDays:      history.DefaultPeriodDays,
			Adjust:          true,
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE, and environment variables, in increasing precedence. A .env
// file in the working directory is read into the environment first.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML file over the defaults. ${VAR} references are
// expanded from the environment before parsing.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if err := cfg.loadFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.OutDir = getEnv("OUT_DIR", c.OutDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Scraper.Endpoint = getEnv("ENDPOINT", c.Scraper.Endpoint)
	c.Scraper.Retries = getEnvInt("RETRIES", c.Scraper.Retries)
	c.Scraper.Timeout = getEnvDuration("TIMEOUT", c.Scraper.Timeout)
	c.Scraper.RetryPause = getEnvDuration("RETRY_PAUSE", c.Scraper.RetryPause)
	c.Scraper.PagePause = getEnvDuration("PAGE_PAUSE", c.Scraper.PagePause)
	c.Batch.InstrumentPause = getEnvDuration("INSTRUMENT_PAUSE", c.Batch.InstrumentPause)
	c.Batch.PeriodDays = getEnvInt("PERIOD_DAYS", c.Batch.PeriodDays)
	c.Batch.Adjust = getEnvBool("ADJUST", c.Batch.Adjust)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}
