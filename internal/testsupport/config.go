package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Every source is disabled until a test points it at a server with
// WithSource, so nothing reaches the network by accident.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.Backend = config.StoreSQLite
	cfgVal.Store.SQLitePath = filepath.Join(base, "data", "records.db")
	cfgVal.Logging.Level = "error"
	cfgVal.Catalog.Relays = []string{}
	cfgVal.Catalog.ValidateArt = false
	for _, name := range config.SourceNames() {
		setSource(&cfgVal, name, func(src *config.Source) { src.Enabled = false })
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSource enables a source against baseURL with near-zero pacing.
func WithSource(name, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		if !setSource(b.cfg, name, func(src *config.Source) {
			src.Enabled = true
			src.BaseURL = baseURL
			src.IntervalMS = 1
		}) {
			b.t.Fatalf("unknown source %q", name)
		}
	}
}

// WithAPIKey sets the credential of a keyed source.
func WithAPIKey(name, key string) ConfigOption {
	return func(b *configBuilder) {
		if !setSource(b.cfg, name, func(src *config.Source) { src.APIKey = key }) {
			b.t.Fatalf("unknown source %q", name)
		}
	}
}

// WithStoreBackend selects the record store.
func WithStoreBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
	}
}

// WithFeedURL sets the catalog feed.
func WithFeedURL(feedURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.FeedURL = feedURL
	}
}

func setSource(cfg *config.Config, name string, fn func(*config.Source)) bool {
	var target *config.Source
	switch name {
	case config.SourceCinemeta:
		target = &cfg.Sources.Cinemeta
	case config.SourceIMDbAPI:
		target = &cfg.Sources.IMDbAPI
	case config.SourceJikan:
		target = &cfg.Sources.Jikan
	case config.SourceFanart:
		target = &cfg.Sources.Fanart
	case config.SourceMDBList:
		target = &cfg.Sources.MDBList
	default:
		return false
	}
	fn(target)
	return true
}

// WriteConfig encodes cfg as TOML at path so CLI tests can load it back.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
