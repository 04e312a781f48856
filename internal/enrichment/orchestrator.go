package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"marquee/internal/logging"
	"marquee/internal/matcher"
	"marquee/internal/metadata"
	"marquee/internal/services"
	"marquee/internal/sources"
	"marquee/internal/store"
)

// DefaultRequired names the sources whose contributions make a record
// complete: the baseline descriptive source and the credits source.
var DefaultRequired = []string{"cinemeta", "imdbapi"}

// TitleMatcher resolves a bare title to an IMDb id.
type TitleMatcher interface {
	Match(ctx context.Context, q matcher.Query) (matcher.Result, error)
}

// Closer is satisfied by the rate limiter.
type Closer interface {
	Close()
}

// Deps wires an Orchestrator. Sources run in slice order, except that
// sources implementing sources.Private run after all others.
type Deps struct {
	Sources []sources.Source
	// KindResolver settles unknown media kinds. When nil, the first source
	// implementing sources.KindResolver is used.
	KindResolver sources.KindResolver
	// Matcher resolves missing IMDb ids. Optional.
	Matcher TitleMatcher
	Store   store.Store
	// Limiter is closed by Close. Optional.
	Limiter  Closer
	Policy   *metadata.Policy
	Required []string
	// RunTimeout bounds one shared enrichment run. Defaults to
	// DefaultRunTimeout.
	RunTimeout time.Duration
	Clock      func() time.Time
	Logger     *slog.Logger
}

// DefaultRunTimeout bounds one shared enrichment run.
const DefaultRunTimeout = 2 * time.Minute

// Orchestrator runs the per-title enrichment pipeline.
type Orchestrator struct {
	public   []sources.Source
	private  []sources.Source
	resolver sources.KindResolver
	matcher  TitleMatcher
	store    store.Store
	limiter  Closer
	policy   metadata.Policy
	required []string
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
	inflight singleflight.Group
}

type outcome struct {
	rec metadata.Record
	err error
}

type fetchFunc func(ctx context.Context, req sources.Request) (metadata.Record, error)

// New validates deps and builds an Orchestrator.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "enrichment", "init", "store required", nil)
	}
	o := &Orchestrator{
		resolver: deps.KindResolver,
		matcher:  deps.Matcher,
		store:    deps.Store,
		limiter:  deps.Limiter,
		policy:   metadata.DefaultPolicy(),
		required: DefaultRequired,
		timeout:  DefaultRunTimeout,
		now:      time.Now,
		logger:   logging.NewComponentLogger(deps.Logger, "enrichment"),
	}
	if deps.Policy != nil {
		o.policy = *deps.Policy
	}
	if len(deps.Required) > 0 {
		o.required = append([]string(nil), deps.Required...)
	}
	if deps.Clock != nil {
		o.now = deps.Clock
	}
	if deps.RunTimeout > 0 {
		o.timeout = deps.RunTimeout
	}

	seen := make(map[string]struct{}, len(deps.Sources))
	for _, src := range deps.Sources {
		if src == nil {
			continue
		}
		name := src.Name()
		if _, dup := seen[name]; dup {
			return nil, services.Wrap(services.ErrConfiguration, "enrichment", "init", "duplicate source "+name, nil)
		}
		seen[name] = struct{}{}
		if p, ok := src.(sources.Private); ok && p.Private() {
			o.private = append(o.private, src)
		} else {
			o.public = append(o.public, src)
		}
		if o.resolver == nil {
			if r, ok := src.(sources.KindResolver); ok {
				o.resolver = r
			}
		}
	}
	return o, nil
}

// SourceNames lists the configured sources in execution order.
func (o *Orchestrator) SourceNames() []string {
	names := make([]string, 0, len(o.public)+len(o.private))
	for _, src := range o.public {
		names = append(names, src.Name())
	}
	for _, src := range o.private {
		names = append(names, src.Name())
	}
	return names
}

// Store returns the record store.
func (o *Orchestrator) Store() store.Store { return o.store }

// Enrich returns the best record obtainable for d. Only ErrInvalidInput is
// returned as an error; every source failure degrades to a partial record.
// Concurrent calls for the same title share a single run. The run is
// detached from the caller that started it, so a cancelled caller returns
// the seed record while the others still receive the finished one.
func (o *Orchestrator) Enrich(ctx context.Context, d Discovery) (metadata.Record, error) {
	d, err := d.normalized()
	if err != nil {
		return metadata.Record{}, err
	}
	ch := o.inflight.DoChan(d.key(), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
		defer cancel()
		rec, err := o.run(runCtx, d)
		return outcome{rec: rec, err: err}, nil
	})
	select {
	case res := <-ch:
		out := res.Val.(outcome)
		return out.rec.Clone(), out.err
	case <-ctx.Done():
		return d.seed(), nil
	}
}

func (o *Orchestrator) run(ctx context.Context, d Discovery) (metadata.Record, error) {
	ctx = services.EnsureRequestID(ctx)
	started := o.now()
	rec := d.seed()

	if rec.ID == "" {
		id, err := o.resolveID(ctx, d)
		if err != nil || id == "" {
			return rec, err
		}
		rec.ID = id
	}

	ctx = services.WithRecordID(ctx, rec.ID)
	logger := logging.WithContext(ctx, o.logger)
	rec = o.load(ctx, logger, rec)
	before := len(rec.Sources)
	attempted := make(map[string]struct{})

	if !rec.Kind.Known() && o.resolver != nil && !rec.HasSource(o.resolver.Name()) {
		attempted[o.resolver.Name()] = struct{}{}
		rec = o.apply(ctx, logger, rec, o.resolver.Name(), o.resolver.ResolveKind, d.Priority)
	}

	for _, group := range [][]sources.Source{o.public, o.private} {
		for _, src := range group {
			if ctx.Err() != nil {
				break
			}
			name := src.Name()
			if _, done := attempted[name]; done || rec.HasSource(name) {
				continue
			}
			if a, ok := src.(sources.Applicable); ok && !a.Applies(rec) {
				logger.Debug("source not applicable", logging.Source(name))
				continue
			}
			attempted[name] = struct{}{}
			rec = o.apply(ctx, logger, rec, name, src.Fetch, d.Priority)
		}
	}

	contributed := len(rec.Sources) - before
	if contributed > 0 {
		rec.UpdatedAt = o.now()
		if err := o.store.Save(context.WithoutCancel(ctx), rec); err != nil {
			logging.WarnWithContext(logger, "record save failed", "store_save_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check store connectivity and disk space"),
				logging.String(logging.FieldImpact, "record will be re-enriched on next sighting"),
			)
		}
	}

	logger.Info("record enriched",
		logging.String("stage", rec.Stage.String()),
		logging.String("sources", strings.Join(rec.Sources, ",")),
		logging.Int("contributed", contributed),
		logging.Duration("duration", o.now().Sub(started)),
	)
	return rec, nil
}

// resolveID runs the title matcher. An empty id with a nil error means no
// confident match.
func (o *Orchestrator) resolveID(ctx context.Context, d Discovery) (string, error) {
	logger := logging.WithContext(ctx, o.logger)
	if o.matcher == nil {
		logger.Debug("no title matcher configured", logging.String("title", d.Title))
		return "", nil
	}
	res, err := o.matcher.Match(ctx, matcher.Query{Title: d.Title, Year: d.Year})
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return "", err
		}
		logger.Debug("title match failed", logging.String("title", d.Title), logging.Error(err))
		return "", nil
	}
	if !res.Matched() {
		logger.Info("title unresolved",
			logging.String("title", d.Title),
			logging.Int("year", d.Year),
			logging.Float64("best_score", res.Score),
			logging.Bool("transient", res.Failure != nil),
		)
		return "", nil
	}
	return res.ID, nil
}

// load folds a stored record under the discovery seed. Stored values win;
// the seed fills gaps.
func (o *Orchestrator) load(ctx context.Context, logger *slog.Logger, seed metadata.Record) metadata.Record {
	stored, ok, err := o.store.Load(ctx, seed.ID)
	if err != nil {
		logger.Warn("record load failed", logging.Error(err))
		return seed
	}
	if !ok {
		return seed
	}
	if stored.Title == "" {
		stored.Title = seed.Title
	}
	if stored.Year == 0 {
		stored.Year = seed.Year
	}
	if !stored.Kind.Known() {
		stored.Kind = seed.Kind
	}
	for k, v := range seed.SecondaryIDs {
		if stored.SecondaryIDs == nil {
			stored.SecondaryIDs = make(map[string]string)
		}
		if _, exists := stored.SecondaryIDs[k]; !exists {
			stored.SecondaryIDs[k] = v
		}
	}
	logger.Debug("stored record loaded", logging.String("stage", stored.Stage.String()))
	return stored
}

// apply fetches from one source and merges a successful result. Failures,
// including panics inside the source, leave rec unchanged.
func (o *Orchestrator) apply(ctx context.Context, logger *slog.Logger, rec metadata.Record, name string, fetch fetchFunc, priority bool) (out metadata.Record) {
	out = rec
	defer func() {
		if r := recover(); r != nil {
			o.reportFailure(logger, name, fmt.Errorf("source panic: %v", r))
			out = rec
		}
	}()

	incoming, err := fetch(services.WithSource(ctx, name), sources.RequestFor(rec, priority))
	if err == nil && incoming.ID != "" && incoming.ID != rec.ID {
		err = sources.Mismatch(name, rec.ID, incoming.ID)
	}
	if err != nil {
		o.reportFailure(logger, name, err)
		return rec
	}
	merged := o.policy.Merge(rec, name, incoming)
	merged.AddSource(name, o.required)
	logger.Debug("source merged",
		logging.Source(name),
		logging.String("stage", merged.Stage.String()),
	)
	return merged
}

func (o *Orchestrator) reportFailure(logger *slog.Logger, name string, err error) {
	attrs := []logging.Attr{
		logging.Source(name),
		logging.String("error_kind", services.Kind(err)),
		logging.Error(err),
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug("source fetch abandoned", logging.Args(attrs...)...)
	case errors.Is(err, services.ErrNotFound):
		logger.Debug("source has no entry", logging.Args(attrs...)...)
	case errors.Is(err, services.ErrMismatchedResponse):
		attrs = append(attrs,
			logging.Alert("mismatched_response"),
			logging.String(logging.FieldErrorHint, "upstream returned a different title; check the source for id drift"),
			logging.String(logging.FieldImpact, "source contribution discarded"),
		)
		logging.WarnWithContext(logger, "source returned data for a different title", "source_mismatch", attrs...)
	case errors.Is(err, services.ErrDailyLimitExceeded):
		logger.Info("source daily quota exhausted", logging.Args(attrs...)...)
	default:
		attrs = append(attrs, logging.String(logging.FieldImpact, "source skipped for this pass"))
		logging.WarnWithContext(logger, "source fetch failed", "source_failed", attrs...)
	}
}

// Close stops the limiter and closes the store.
func (o *Orchestrator) Close() error {
	if o.limiter != nil {
		o.limiter.Close()
	}
	return o.store.Close()
}
