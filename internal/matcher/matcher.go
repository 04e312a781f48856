package matcher

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"marquee/internal/boundedcache"
	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/textutil"
)

// Tuning constants for candidate scoring.
const (
	DefaultTopK      = 3
	AcceptThreshold  = 0.85
	LengthRatioFloor = 0.8
	LengthPenalty    = 0.3
	YearBonus        = 0.25
	YearTolerance    = 1

	DefaultCacheSize = 500
	DefaultCacheTTL  = 24 * time.Hour
)

// Candidate is one search hit in upstream relevance order.
type Candidate struct {
	ID    string
	Title string
	Year  int
}

// Searcher runs a free-text title search against an external index.
type Searcher interface {
	Search(ctx context.Context, title string, year int) ([]Candidate, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, title string, year int) ([]Candidate, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, title string, year int) ([]Candidate, error) {
	return f(ctx, title, year)
}

// Query is a title lookup. AltTitle is an optional original-language title.
type Query struct {
	Title    string
	AltTitle string
	Year     int
}

// Result describes a lookup outcome. An empty ID means no match.
type Result struct {
	ID        string
	Candidate Candidate
	Score     float64
	// MatchedQuery is the query string (primary or alternate) that scored best.
	MatchedQuery string
	Cached       bool
	// Failure carries the transient error behind an uncached no-match.
	Failure error
}

// Matched reports whether an identifier was resolved.
func (r Result) Matched() bool {
	return r.ID != ""
}

// Matcher resolves titles to identifiers with trigram similarity scoring.
type Matcher struct {
	name      string
	searcher  Searcher
	topK      int
	threshold float64
	cache     *boundedcache.Cache[string, string]
	logger    *slog.Logger
}

type settings struct {
	name      string
	topK      int
	threshold float64
	cacheSize int
	cacheTTL  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Matcher.
type Option func(*settings)

// WithName labels log lines with the index being searched.
func WithName(name string) Option {
	return func(s *settings) { s.name = strings.TrimSpace(name) }
}

// WithTopK limits how many upstream candidates are scored.
func WithTopK(k int) Option {
	return func(s *settings) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithThreshold overrides the minimum accepted score.
func WithThreshold(threshold float64) Option {
	return func(s *settings) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithCache sets the result cache capacity and TTL.
func WithCache(size int, ttl time.Duration) Option {
	return func(s *settings) {
		if size > 0 {
			s.cacheSize = size
		}
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithClock overrides the cache clock.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New builds a matcher over searcher.
func New(searcher Searcher, opts ...Option) (*Matcher, error) {
	if searcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "matcher", "init", "searcher required", nil)
	}
	cfg := settings{
		name:      "search",
		topK:      DefaultTopK,
		threshold: AcceptThreshold,
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cache, err := boundedcache.New[string, string](cfg.cacheSize,
		boundedcache.WithTTL(cfg.cacheTTL),
		boundedcache.WithClock(cfg.now),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "matcher", "init", "search cache", err)
	}
	logger := logging.NewComponentLogger(cfg.logger, "matcher").With(logging.String("index", cfg.name))
	return &Matcher{
		name:      cfg.name,
		searcher:  searcher,
		topK:      cfg.topK,
		threshold: cfg.threshold,
		cache:     cache,
		logger:    logger,
	}, nil
}

// Name returns the index label.
func (m *Matcher) Name() string {
	return m.name
}

// Match finds the best candidate for q. Only ErrInvalidInput is returned as
// an error; search failures come back as an uncached no-match with Failure set.
func (m *Matcher) Match(ctx context.Context, q Query) (Result, error) {
	title := strings.TrimSpace(q.Title)
	if title == "" || textutil.CleanTitle(title) == "" {
		return Result{}, services.Wrap(services.ErrInvalidInput, m.name, "match", "title required", nil)
	}
	key := textutil.CacheKey(title, q.Year)
	if id, ok := m.cache.Get(key); ok {
		return Result{ID: id, Cached: true}, nil
	}

	candidates, err := m.searcher.Search(ctx, title, q.Year)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return Result{}, err
		}
		m.logger.Debug("title search failed",
			logging.String("query", title),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
		return Result{Failure: err}, nil
	}
	if len(candidates) > m.topK {
		candidates = candidates[:m.topK]
	}

	best := Result{Score: -1}
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate.ID) == "" {
			continue
		}
		score, matched := Score(Query{Title: title, AltTitle: q.AltTitle, Year: q.Year}, candidate)
		if score > best.Score {
			best = Result{Candidate: candidate, Score: score, MatchedQuery: matched}
		}
	}

	if best.Score >= m.threshold {
		best.ID = best.Candidate.ID
	}
	m.cache.Set(key, best.ID)

	m.logger.Debug("title search scored",
		logging.String("query", title),
		logging.Int("candidates", len(candidates)),
		logging.Float64("best_score", best.Score),
		logging.String("best_title", best.Candidate.Title),
		logging.Bool("accepted", best.Matched()),
	)
	if best.Score < 0 {
		return Result{}, nil
	}
	return best, nil
}

// Score rates candidate against q: the best Dice similarity between either
// query string and any romanization variant of the candidate title, with the
// length-ratio penalty and year bonus applied. It also returns which query
// string produced the best similarity.
func Score(q Query, candidate Candidate) (float64, string) {
	queries := []string{q.Title}
	if alt := strings.TrimSpace(q.AltTitle); alt != "" {
		queries = append(queries, alt)
	}
	variants := textutil.RomanizationVariants(candidate.Title)

	best := 0.0
	matched := q.Title
	for _, query := range queries {
		for _, variant := range variants {
			if s := textutil.DiceSimilarity(query, variant); s > best {
				best = s
				matched = query
			}
		}
	}

	if lengthRatio(matched, candidate.Title) < LengthRatioFloor {
		best -= LengthPenalty
	}
	if q.Year > 0 && candidate.Year > 0 && absInt(q.Year-candidate.Year) <= YearTolerance {
		best += YearBonus
	}
	return best, matched
}

func lengthRatio(a, b string) float64 {
	la := len([]rune(textutil.SimilarityKey(a)))
	lb := len([]rune(textutil.SimilarityKey(b)))
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
