package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Source names recognised in the [sources] table.
const (
	SourceCinemeta = "cinemeta"
	SourceIMDbAPI  = "imdbapi"
	SourceJikan    = "jikan"
	SourceFanart   = "fanart"
	SourceMDBList  = "mdblist"
)

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// HTTP contains settings shared by every outbound request.
type HTTP struct {
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	UserAgent             string `toml:"user_agent"`
}

// Source configures one external metadata API.
type Source struct {
	Enabled    bool   `toml:"enabled"`
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	IntervalMS int    `toml:"interval_ms"`
	DailyCap   int    `toml:"daily_cap"`
}

// Interval returns the minimum spacing between two requests to the source.
func (s Source) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// Sources groups the per-source settings.
type Sources struct {
	Cinemeta Source `toml:"cinemeta"`
	IMDbAPI  Source `toml:"imdbapi"`
	Jikan    Source `toml:"jikan"`
	Fanart   Source `toml:"fanart"`
	MDBList  Source `toml:"mdblist"`
}

// Matcher configures fuzzy title resolution.
type Matcher struct {
	TopK          int     `toml:"top_k"`
	Threshold     float64 `toml:"threshold"`
	CacheSize     int     `toml:"cache_size"`
	CacheTTLHours int     `toml:"cache_ttl_hours"`
}

// Images configures art URL validation.
type Images struct {
	CacheSize int      `toml:"cache_size"`
	BaseURL   string   `toml:"base_url"`
	Sizes     []string `toml:"sizes"`
}

// Merge configures field precedence when combining sources.
type Merge struct {
	// PlotPriority ranks sources for the plot field. A source replaces an
	// existing plot only when its rank is strictly higher.
	PlotPriority  map[string]int `toml:"plot_priority"`
	CastLimit     int            `toml:"cast_limit"`
	DirectorLimit int            `toml:"director_limit"`
}

// Catalog configures bulk enrichment of catalog feeds.
type Catalog struct {
	FeedURL      string   `toml:"feed_url"`
	Relays       []string `toml:"relays"`
	Concurrency  int      `toml:"concurrency"`
	ValidateArt  bool     `toml:"validate_art"`
	Schedule     string   `toml:"schedule"`
	RotationSize int      `toml:"rotation_size"`
}

// Intake configures the discovery event queue.
type Intake struct {
	Buffer  int `toml:"buffer"`
	Workers int `toml:"workers"`
}

// Store configures record persistence.
type Store struct {
	Backend       string `toml:"backend"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	KeyPrefix     string `toml:"key_prefix"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for marquee.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - HTTP: shared request timeout and user agent
//   - Sources: per-source base URL, credentials, pacing and daily caps
//   - Matcher: title search shortlist size, acceptance threshold, cache
//   - Images: art validation cache and candidate sizes
//   - Merge: plot priority table and credit caps
//   - Catalog: feed URL, CORS relay chain, fan-out and rotation schedule
//   - Intake: discovery queue sizing
//   - Store: sqlite or redis record persistence
//   - Logging: log format, level, and rotation
type Config struct {
	Paths   Paths   `toml:"paths"`
	HTTP    HTTP    `toml:"http"`
	Sources Sources `toml:"sources"`
	Matcher Matcher `toml:"matcher"`
	Images  Images  `toml:"images"`
	Merge   Merge   `toml:"merge"`
	Catalog Catalog `toml:"catalog"`
	Intake  Intake  `toml:"intake"`
	Store   Store   `toml:"store"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Store.Backend == StoreSQLite {
		if err := os.MkdirAll(filepath.Dir(c.Store.SQLitePath), 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}
	return nil
}

// RequestTimeout returns the shared outbound request deadline.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.RequestTimeoutSeconds) * time.Second
}

// MatcherCacheTTL returns the lifetime of cached title resolutions.
func (c *Config) MatcherCacheTTL() time.Duration {
	return time.Duration(c.Matcher.CacheTTLHours) * time.Hour
}

// SourceByName returns the settings for a named source.
func (c *Config) SourceByName(name string) (Source, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SourceCinemeta:
		return c.Sources.Cinemeta, true
	case SourceIMDbAPI:
		return c.Sources.IMDbAPI, true
	case SourceJikan:
		return c.Sources.Jikan, true
	case SourceFanart:
		return c.Sources.Fanart, true
	case SourceMDBList:
		return c.Sources.MDBList, true
	default:
		return Source{}, false
	}
}

// SourceNames lists every known source in orchestration order.
func SourceNames() []string {
	return []string{SourceCinemeta, SourceIMDbAPI, SourceJikan, SourceFanart, SourceMDBList}
}

// LockPath returns the file used to serialize catalog refreshes.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "catalog.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
