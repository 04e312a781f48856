package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/enrichment"
	"marquee/internal/images"
	"marquee/internal/logging"
	"marquee/internal/matcher"
	"marquee/internal/metadata"
	"marquee/internal/ratelimit"
	"marquee/internal/sources"
	"marquee/internal/sources/cinemeta"
	"marquee/internal/sources/fanart"
	"marquee/internal/sources/imdbapi"
	"marquee/internal/sources/jikan"
	"marquee/internal/sources/mdblist"
	"marquee/internal/store"
)

// SourceStatus reports how a configured source was wired.
type SourceStatus struct {
	Name   string
	Active bool
	Detail string
}

// Engine holds the wired runtime. Fields are read-only after Build.
type Engine struct {
	Config       *config.Config
	Logger       *slog.Logger
	Limiter      *ratelimit.Limiter
	Orchestrator *enrichment.Orchestrator
	// Searcher lists IMDb candidates for a title; nil when imdbapi is off.
	Searcher matcher.Searcher
	// Matcher resolves titles to IMDb ids; nil when imdbapi is off.
	Matcher *matcher.Matcher
	// AnimeMatcher resolves titles to MAL ids; nil when jikan is off.
	AnimeMatcher *matcher.Matcher
	Images       *images.Validator
	Fetcher      *catalog.Fetcher
	Sources      []SourceStatus
}

// Build wires every component described by cfg. A keyed source without a
// key is left out with a warning rather than failing the build.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{Config: cfg, Logger: logger}

	e.Limiter = ratelimit.New(
		ratelimit.WithTimeout(cfg.RequestTimeout()),
		ratelimit.WithUserAgent(cfg.HTTP.UserAgent),
		ratelimit.WithLogger(logger),
	)

	srcs, err := e.buildSources()
	if err != nil {
		e.Limiter.Close()
		return nil, err
	}

	validator, err := images.New(
		images.WithBaseURL(cfg.Images.BaseURL),
		images.WithSizes(cfg.Images.Sizes...),
		images.WithCacheSize(cfg.Images.CacheSize),
		images.WithUserAgent(cfg.HTTP.UserAgent),
		images.WithLogger(logger),
	)
	if err != nil {
		e.Limiter.Close()
		return nil, fmt.Errorf("image validator: %w", err)
	}
	e.Images = validator

	st, err := store.Open(ctx, cfg)
	if err != nil {
		e.Limiter.Close()
		return nil, fmt.Errorf("open record store: %w", err)
	}

	deps := enrichment.Deps{
		Sources:  srcs,
		Store:    st,
		Limiter:  e.Limiter,
		Policy:   policyFor(cfg),
		Required: requiredFor(srcs),
		Logger:   logger,
	}
	if e.Matcher != nil {
		deps.Matcher = e.Matcher
	}
	orch, err := enrichment.New(deps)
	if err != nil {
		_ = st.Close()
		e.Limiter.Close()
		return nil, err
	}
	e.Orchestrator = orch

	e.Fetcher = catalog.NewFetcher(
		catalog.WithRelays(cfg.Catalog.Relays...),
		catalog.WithFetcherUserAgent(cfg.HTTP.UserAgent),
		catalog.WithFetcherLogger(logger),
	)

	logger.Debug("engine ready",
		logging.String("sources", fmt.Sprint(orch.SourceNames())),
		logging.String("store", cfg.Store.Backend),
	)
	return e, nil
}

func (e *Engine) buildSources() ([]sources.Source, error) {
	cfg := e.Config
	var srcs []sources.Source
	for _, name := range config.SourceNames() {
		settings, _ := cfg.SourceByName(name)
		status := SourceStatus{Name: name}
		if !settings.Enabled {
			status.Detail = "disabled"
			e.Sources = append(e.Sources, status)
			continue
		}
		if (name == config.SourceFanart || name == config.SourceMDBList) && settings.APIKey == "" {
			status.Detail = "api key missing"
			e.Sources = append(e.Sources, status)
			logging.WarnWithContext(e.Logger, "source skipped, api key missing", "source_unconfigured",
				logging.Source(name),
				logging.String(logging.FieldErrorHint, "set sources."+name+".api_key"),
				logging.String(logging.FieldImpact, "records will lack "+name+" fields"),
			)
			continue
		}
		if err := e.Limiter.Register(ratelimit.SourceConfig{
			Name:     name,
			Interval: settings.Interval(),
			DailyCap: settings.DailyCap,
		}); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}

		src, err := e.newSource(name, settings)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		status.Active = true
		e.Sources = append(e.Sources, status)
		srcs = append(srcs, src)
	}
	return srcs, nil
}

func (e *Engine) newSource(name string, settings config.Source) (sources.Source, error) {
	cfg := e.Config
	matcherOpts := []matcher.Option{
		matcher.WithTopK(cfg.Matcher.TopK),
		matcher.WithThreshold(cfg.Matcher.Threshold),
		matcher.WithCache(cfg.Matcher.CacheSize, cfg.MatcherCacheTTL()),
		matcher.WithLogger(e.Logger),
	}
	switch name {
	case config.SourceCinemeta:
		return cinemeta.New(e.Limiter, settings.BaseURL)
	case config.SourceIMDbAPI:
		client, err := imdbapi.New(e.Limiter, settings.BaseURL, imdbapi.WithLogger(e.Logger))
		if err != nil {
			return nil, err
		}
		m, err := matcher.New(client, append(matcherOpts, matcher.WithName(imdbapi.Name))...)
		if err != nil {
			return nil, err
		}
		e.Searcher = client
		e.Matcher = m
		return client, nil
	case config.SourceJikan:
		client, err := jikan.New(e.Limiter, settings.BaseURL,
			jikan.WithLogger(e.Logger),
			jikan.WithMatcherOptions(matcherOpts...),
		)
		if err != nil {
			return nil, err
		}
		e.AnimeMatcher = client.Matcher()
		return client, nil
	case config.SourceFanart:
		return fanart.New(e.Limiter, settings.BaseURL, settings.APIKey)
	case config.SourceMDBList:
		return mdblist.New(e.Limiter, settings.BaseURL, settings.APIKey)
	default:
		return nil, fmt.Errorf("unknown source %q", name)
	}
}

func policyFor(cfg *config.Config) *metadata.Policy {
	policy := metadata.DefaultPolicy()
	if len(cfg.Merge.PlotPriority) > 0 {
		policy.PlotPriority = cfg.Merge.PlotPriority
	}
	if cfg.Merge.CastLimit > 0 {
		policy.CastLimit = cfg.Merge.CastLimit
	}
	if cfg.Merge.DirectorLimit > 0 {
		policy.DirectorLimit = cfg.Merge.DirectorLimit
	}
	return &policy
}

// requiredFor keeps the default completion set to the sources actually
// wired, so a record can still reach complete when one of them is off.
func requiredFor(srcs []sources.Source) []string {
	var required []string
	for _, src := range srcs {
		if slices.Contains(enrichment.DefaultRequired, src.Name()) {
			required = append(required, src.Name())
		}
	}
	if len(required) == 0 {
		return enrichment.DefaultRequired
	}
	return required
}

// Pipeline returns a catalog pipeline over the orchestrator. Art is
// screened when validateArt is set.
func (e *Engine) Pipeline(validateArt bool) *catalog.Pipeline {
	opts := []catalog.PipelineOption{
		catalog.WithConcurrency(e.Config.Catalog.Concurrency),
		catalog.WithPipelineLogger(e.Logger),
	}
	if validateArt {
		opts = append(opts, catalog.WithArtValidator(e.Images))
	}
	return catalog.NewPipeline(e.Orchestrator, opts...)
}

// Rotator returns a catalog rotator for feedURL, or the configured feed when
// feedURL is empty.
func (e *Engine) Rotator(feedURL string) (*catalog.Rotator, error) {
	if feedURL == "" {
		feedURL = e.Config.Catalog.FeedURL
	}
	schedule := e.Config.Catalog.Schedule
	if schedule == "" {
		schedule = "@every 6h"
	}
	return catalog.NewRotator(catalog.RotatorConfig{
		Feed:     e.Fetcher,
		Pipeline: e.Pipeline(e.Config.Catalog.ValidateArt),
		FeedURL:  feedURL,
		Schedule: schedule,
		Size:     e.Config.Catalog.RotationSize,
		LockPath: e.Config.LockPath(),
		Logger:   e.Logger,
	})
}

// Intake returns a discovery queue sized from config.
func (e *Engine) Intake(opts ...enrichment.IntakeOption) *enrichment.Intake {
	opts = append([]enrichment.IntakeOption{enrichment.WithIntakeLogger(e.Logger)}, opts...)
	return enrichment.NewIntake(e.Orchestrator, e.Config.Intake.Buffer, e.Config.Intake.Workers, opts...)
}

// Store returns the record store.
func (e *Engine) Store() store.Store {
	return e.Orchestrator.Store()
}

// Close stops the limiter and closes the store.
func (e *Engine) Close() error {
	if e == nil || e.Orchestrator == nil {
		return nil
	}
	return e.Orchestrator.Close()
}
