package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeHTTP()
	c.normalizeSources()
	c.normalizeImages()
	c.normalizeMerge()
	c.normalizeCatalog()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHTTP() {
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeSources() {
	normalizeSource(&c.Sources.Cinemeta, defaultCinemetaBaseURL, "")
	normalizeSource(&c.Sources.IMDbAPI, defaultIMDbAPIBaseURL, "")
	normalizeSource(&c.Sources.Jikan, defaultJikanBaseURL, "")
	normalizeSource(&c.Sources.Fanart, defaultFanartBaseURL, "FANART_API_KEY")
	normalizeSource(&c.Sources.MDBList, defaultMDBListBaseURL, "MDBLIST_API_KEY")
}

func normalizeSource(src *Source, defaultBaseURL, keyEnv string) {
	src.BaseURL = strings.TrimRight(strings.TrimSpace(src.BaseURL), "/")
	if src.BaseURL == "" {
		src.BaseURL = defaultBaseURL
	}
	src.APIKey = strings.TrimSpace(src.APIKey)
	if src.APIKey == "" && keyEnv != "" {
		if value, ok := os.LookupEnv(keyEnv); ok {
			src.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeImages() {
	c.Images.BaseURL = strings.TrimRight(strings.TrimSpace(c.Images.BaseURL), "/")
	sizes := make([]string, 0, len(c.Images.Sizes))
	seen := make(map[string]struct{}, len(c.Images.Sizes))
	for _, size := range c.Images.Sizes {
		size = strings.TrimSpace(size)
		if size == "" {
			continue
		}
		if _, ok := seen[size]; ok {
			continue
		}
		seen[size] = struct{}{}
		sizes = append(sizes, size)
	}
	c.Images.Sizes = sizes
}

func (c *Config) normalizeMerge() {
	if len(c.Merge.PlotPriority) == 0 {
		return
	}
	normalized := make(map[string]int, len(c.Merge.PlotPriority))
	for name, rank := range c.Merge.PlotPriority {
		normalized[strings.ToLower(strings.TrimSpace(name))] = rank
	}
	c.Merge.PlotPriority = normalized
}

func (c *Config) normalizeCatalog() {
	c.Catalog.FeedURL = strings.TrimSpace(c.Catalog.FeedURL)
	c.Catalog.Schedule = strings.TrimSpace(c.Catalog.Schedule)
	relays := c.Catalog.Relays[:0]
	for _, relay := range c.Catalog.Relays {
		if relay = strings.TrimSpace(relay); relay != "" {
			relays = append(relays, relay)
		}
	}
	c.Catalog.Relays = relays
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = StoreSQLite
	}
	if strings.TrimSpace(c.Store.SQLitePath) == "" {
		c.Store.SQLitePath = filepath.Join(c.Paths.DataDir, "records.db")
	}
	var err error
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}
	c.Store.RedisAddr = strings.TrimSpace(c.Store.RedisAddr)
	if c.Store.RedisAddr == "" {
		if value, ok := os.LookupEnv("MARQUEE_REDIS_ADDR"); ok {
			c.Store.RedisAddr = strings.TrimSpace(value)
		}
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = defaultStoreKeyPrefix
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
