package config

const (
	defaultDataDir               = "~/.local/share/marquee"
	defaultLogDir                = "~/.local/share/marquee/logs"
	defaultRequestTimeoutSeconds = 10
	defaultUserAgent             = "marquee/dev"
	defaultCinemetaBaseURL       = "https://v3-cinemeta.strem.io"
	defaultIMDbAPIBaseURL        = "https://api.imdbapi.dev"
	defaultJikanBaseURL          = "https://api.jikan.moe/v4"
	defaultFanartBaseURL         = "https://webservice.fanart.tv/v3"
	defaultMDBListBaseURL        = "https://api.mdblist.com"
	defaultMatcherTopK           = 3
	defaultMatcherThreshold      = 0.85
	defaultMatcherCacheSize      = 500
	defaultMatcherCacheTTLHours  = 24
	defaultImageCacheSize        = 500
	defaultImageBaseURL          = "https://image.tmdb.org/t/p"
	defaultCastLimit             = 50
	defaultDirectorLimit         = 2
	defaultCatalogConcurrency    = 8
	defaultCatalogSchedule       = "@every 6h"
	defaultCatalogRotationSize   = 20
	defaultIntakeBuffer          = 256
	defaultIntakeWorkers         = 4
	defaultStoreKeyPrefix        = "marquee:record:"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogMaxSizeMB          = 20
	defaultLogMaxBackups         = 5
	defaultLogMaxAgeDays         = 30
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		HTTP: HTTP{
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			UserAgent:             defaultUserAgent,
		},
		Sources: Sources{
			Cinemeta: Source{Enabled: true, BaseURL: defaultCinemetaBaseURL, IntervalMS: 50},
			IMDbAPI:  Source{Enabled: true, BaseURL: defaultIMDbAPIBaseURL, IntervalMS: 200},
			Jikan:    Source{Enabled: true, BaseURL: defaultJikanBaseURL, IntervalMS: 350},
			Fanart:   Source{Enabled: true, BaseURL: defaultFanartBaseURL, IntervalMS: 100},
			MDBList:  Source{Enabled: true, BaseURL: defaultMDBListBaseURL, IntervalMS: 100, DailyCap: 500},
		},
		Matcher: Matcher{
			TopK:          defaultMatcherTopK,
			Threshold:     defaultMatcherThreshold,
			CacheSize:     defaultMatcherCacheSize,
			CacheTTLHours: defaultMatcherCacheTTLHours,
		},
		Images: Images{
			CacheSize: defaultImageCacheSize,
			BaseURL:   defaultImageBaseURL,
			Sizes:     []string{"w780", "original"},
		},
		Merge: Merge{
			PlotPriority: map[string]int{
				SourceCinemeta: 1,
				SourceIMDbAPI:  1,
				SourceJikan:    1,
				SourceMDBList:  2,
			},
			CastLimit:     defaultCastLimit,
			DirectorLimit: defaultDirectorLimit,
		},
		Catalog: Catalog{
			Concurrency:  defaultCatalogConcurrency,
			ValidateArt:  true,
			Schedule:     defaultCatalogSchedule,
			RotationSize: defaultCatalogRotationSize,
			Relays: []string{
				"https://corsproxy.io/?url={url}",
				"https://api.allorigins.win/raw?url={url}",
			},
		},
		Intake: Intake{
			Buffer:  defaultIntakeBuffer,
			Workers: defaultIntakeWorkers,
		},
		Store: Store{
			Backend:   StoreSQLite,
			KeyPrefix: defaultStoreKeyPrefix,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
