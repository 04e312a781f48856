package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.HTTP.RequestTimeoutSeconds <= 0 {
		return errors.New("http.request_timeout_seconds must be positive")
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateCaches(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSources() error {
	for _, name := range SourceNames() {
		src, _ := c.SourceByName(name)
		if src.IntervalMS <= 0 {
			return fmt.Errorf("sources.%s.interval_ms must be positive", name)
		}
		if src.DailyCap < 0 {
			return fmt.Errorf("sources.%s.daily_cap must not be negative", name)
		}
		if _, err := url.ParseRequestURI(src.BaseURL); err != nil {
			return fmt.Errorf("sources.%s.base_url: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.TopK <= 0 {
		return errors.New("matcher.top_k must be positive")
	}
	if c.Matcher.Threshold <= 0 || c.Matcher.Threshold > 1 {
		return errors.New("matcher.threshold must be within (0, 1]")
	}
	if c.Matcher.CacheTTLHours <= 0 {
		return errors.New("matcher.cache_ttl_hours must be positive")
	}
	return nil
}

func (c *Config) validateCaches() error {
	return ensurePositiveMap(map[string]int{
		"matcher.cache_size":   c.Matcher.CacheSize,
		"images.cache_size":    c.Images.CacheSize,
		"merge.cast_limit":     c.Merge.CastLimit,
		"merge.director_limit": c.Merge.DirectorLimit,
		"intake.buffer":        c.Intake.Buffer,
		"intake.workers":       c.Intake.Workers,
	})
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Concurrency <= 0 {
		return errors.New("catalog.concurrency must be positive")
	}
	if c.Catalog.RotationSize <= 0 {
		return errors.New("catalog.rotation_size must be positive")
	}
	for _, relay := range c.Catalog.Relays {
		if !strings.Contains(relay, "{url}") {
			return fmt.Errorf("catalog.relays entry %q must contain the {url} placeholder", relay)
		}
	}
	if c.Catalog.Schedule != "" {
		if _, err := cron.ParseStandard(c.Catalog.Schedule); err != nil {
			return fmt.Errorf("catalog.schedule: %w", err)
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("store.sqlite_path must be set for the sqlite backend")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("store.redis_addr must be set for the redis backend (or export MARQUEE_REDIS_ADDR)")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("store.backend: unsupported value %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
