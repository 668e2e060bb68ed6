package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %q", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.OutDir == "" {
		return errors.New("out_dir is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}

	if err := c.Scraper.validate("scraper"); err != nil {
		return err
	}

	if c.Batch.InstrumentPause < 0 {
		return errors.New("batch.instrument_pause must be >= 0")
	}
	if c.Batch.PeriodDays < 1 {
		return errors.New("batch.period_days must be >= 1")
	}
	return nil
}

func (s *ScraperConfig) validate(prefix string) error {
	if s.Endpoint == "" {
		return fmt.Errorf("%s.endpoint is required", prefix)
	}
	u, err := url.Parse(s.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s.endpoint must be an absolute http(s) URL, got %q", prefix, s.Endpoint)
	}
	if s.Retries < 0 {
		return fmt.Errorf("%s.retries must be >= 0", prefix)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("%s.timeout must be > 0", prefix)
	}
	if s.RetryPause < 0 {
		return fmt.Errorf("%s.retry_pause must be >= 0", prefix)
	}
	if s.PagePause < 0 {
		return fmt.Errorf("%s.page_pause must be >= 0", prefix)
	}
	return nil
}
