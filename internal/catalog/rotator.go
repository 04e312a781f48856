package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"marquee/internal/logging"
	"marquee/internal/metadata"
	"marquee/internal/services"
)

// DefaultRotationSize is the number of records in one display window.
const DefaultRotationSize = 20

// ErrRefreshLocked reports that another process holds the refresh lock.
var ErrRefreshLocked = errors.New("catalog refresh already running")

// FeedSource fetches feed items. *Fetcher satisfies it.
type FeedSource interface {
	FetchFeed(ctx context.Context, feedURL string) ([]json.RawMessage, error)
}

// RotatorConfig wires a Rotator.
type RotatorConfig struct {
	Feed     FeedSource
	Pipeline *Pipeline
	FeedURL  string
	// Schedule is a standard cron expression or descriptor such as "@every 6h".
	Schedule string
	Size     int
	// LockPath guards refreshes across processes. Empty disables locking.
	LockPath string
	Clock    func() time.Time
	Logger   *slog.Logger
}

// Rotator periodically refreshes a catalog and serves a rotating window of
// its records. Each scheduled tick refreshes the pool and advances the window.
type Rotator struct {
	feed     FeedSource
	pipeline *Pipeline
	feedURL  string
	schedule cron.Schedule
	size     int
	lock     *flock.Flock
	now      func() time.Time
	logger   *slog.Logger

	mu        sync.RWMutex
	pool      []metadata.Record
	offset    int
	refreshed time.Time

	cron *cron.Cron
}

// NewRotator validates cfg and builds a Rotator.
func NewRotator(cfg RotatorConfig) (*Rotator, error) {
	if cfg.Feed == nil || cfg.Pipeline == nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "rotator", "feed and pipeline required", nil)
	}
	if cfg.FeedURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "rotator", "catalog.feed_url is empty", nil)
	}
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "rotator", "invalid schedule "+cfg.Schedule, err)
	}
	r := &Rotator{
		feed:     cfg.Feed,
		pipeline: cfg.Pipeline,
		feedURL:  cfg.FeedURL,
		schedule: schedule,
		size:     cfg.Size,
		now:      cfg.Clock,
		logger:   logging.NewComponentLogger(cfg.Logger, "catalog_rotator"),
	}
	if r.size <= 0 {
		r.size = DefaultRotationSize
	}
	if r.now == nil {
		r.now = time.Now
	}
	if cfg.LockPath != "" {
		r.lock = flock.New(cfg.LockPath)
	}
	return r, nil
}

// Refresh fetches and enriches the feed, replacing the record pool. The
// window offset is kept when it still fits the new pool.
func (r *Rotator) Refresh(ctx context.Context) (Summary, error) {
	if r.lock != nil {
		ok, err := r.lock.TryLock()
		if err != nil {
			return Summary{}, fmt.Errorf("acquire catalog lock: %w", err)
		}
		if !ok {
			return Summary{}, ErrRefreshLocked
		}
		defer func() {
			if err := r.lock.Unlock(); err != nil {
				r.logger.Warn("failed to release catalog lock", logging.Error(err))
			}
		}()
	}

	items, err := r.feed.FetchFeed(ctx, r.feedURL)
	if err != nil {
		return Summary{}, err
	}
	records, summary := r.pipeline.Run(ctx, items)
	if len(records) == 0 {
		logging.WarnWithContext(r.logger, "catalog refresh produced no records", "catalog_empty",
			logging.String("feed_url", r.feedURL),
			logging.Int("items", len(items)),
			logging.String(logging.FieldImpact, "previous rotation kept"),
		)
		return summary, nil
	}

	r.mu.Lock()
	r.pool = records
	if r.offset >= len(records) {
		r.offset = 0
	}
	r.refreshed = r.now()
	r.mu.Unlock()
	return summary, nil
}

// Current returns the active display window. The window wraps around the
// end of the pool.
func (r *Rotator) Current() []metadata.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := min(r.size, len(r.pool))
	out := make([]metadata.Record, 0, n)
	for i := range n {
		out = append(out, r.pool[(r.offset+i)%len(r.pool)].Clone())
	}
	return out
}

// Advance moves the window forward by one window length.
func (r *Rotator) Advance() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pool) == 0 {
		return
	}
	r.offset = (r.offset + r.size) % len(r.pool)
}

// LastRefresh returns when the pool was last replaced.
func (r *Rotator) LastRefresh() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refreshed
}

// NextRun returns the next scheduled tick after now.
func (r *Rotator) NextRun() time.Time {
	return r.schedule.Next(r.now())
}

// Start schedules ticks until ctx is cancelled or Stop is called.
func (r *Rotator) Start(ctx context.Context) {
	r.mu.Lock()
	if r.cron != nil {
		r.mu.Unlock()
		return
	}
	logger := cronLogger{r.logger}
	r.cron = cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	r.cron.Schedule(r.schedule, cron.FuncJob(func() { r.tick(ctx) }))
	c := r.cron
	r.mu.Unlock()

	c.Start()
	r.logger.Info("catalog rotation scheduled", logging.String("next_run", r.NextRun().Format(time.RFC3339)))
	go func() {
		<-ctx.Done()
		r.Stop()
	}()
}

// Stop halts the schedule and waits for a running tick to finish.
func (r *Rotator) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

func (r *Rotator) tick(ctx context.Context) {
	summary, err := r.Refresh(ctx)
	switch {
	case errors.Is(err, ErrRefreshLocked):
		r.logger.Info("catalog refresh skipped, lock held elsewhere")
	case err != nil:
		logging.WarnWithContext(r.logger, "catalog refresh failed", "catalog_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "rotation continues over the previous pool"),
		)
	default:
		r.logger.Debug("catalog refreshed", logging.Int("enriched", summary.Enriched))
	}
	r.Advance()
}

// cronLogger routes scheduler output through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Warn(msg, append(keysAndValues, "error", err)...)
}
