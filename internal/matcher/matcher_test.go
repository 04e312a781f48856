package matcher_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"marquee/internal/matcher"
	"marquee/internal/services"
	"marquee/internal/textutil"
)

type stubSearcher struct {
	mu      sync.Mutex
	calls   int
	results [][]matcher.Candidate
	errs    []error
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]matcher.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++
	var err error
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	if err != nil {
		return nil, err
	}
	if len(s.results) == 0 {
		return nil, nil
	}
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	return s.results[idx], nil
}

func (s *stubSearcher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newMatcher(t *testing.T, searcher matcher.Searcher, opts ...matcher.Option) *matcher.Matcher {
	t.Helper()
	m, err := matcher.New(searcher, opts...)
	if err != nil {
		t.Fatalf("matcher.New: %v", err)
	}
	return m
}

var shawshank = matcher.Candidate{ID: "tt0111161", Title: "The Shawshank Redemption", Year: 1994}

func TestMatchAcceptsExactTitle(t *testing.T) {
	searcher := &stubSearcher{results: [][]matcher.Candidate{{
		{ID: "tt9999999", Title: "Redemption Road", Year: 2010},
		shawshank,
	}}}
	m := newMatcher(t, searcher)

	res, err := m.Match(context.Background(), matcher.Query{Title: "The Shawshank Redemption", Year: 1994})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.ID != "tt0111161" {
		t.Fatalf("expected tt0111161, got %+v", res)
	}
	if math.Abs(res.Score-(1+matcher.YearBonus)) > 1e-9 {
		t.Fatalf("expected exact match plus year bonus, got %v", res.Score)
	}
}

func TestMatchOnlyScoresTopK(t *testing.T) {
	searcher := &stubSearcher{results: [][]matcher.Candidate{{
		{ID: "tt1", Title: "Alpha"},
		{ID: "tt2", Title: "Beta"},
		{ID: "tt3", Title: "Gamma"},
		shawshank,
	}}}
	m := newMatcher(t, searcher)

	res, err := m.Match(context.Background(), matcher.Query{Title: "The Shawshank Redemption"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Matched() {
		t.Fatalf("expected fourth candidate to be ignored, got %+v", res)
	}
}

func TestThresholdIsInclusive(t *testing.T) {
	q := matcher.Query{Title: "Shawshank Redemption"}
	score, _ := matcher.Score(q, shawshank)
	if score <= 0 || score >= 1 {
		t.Fatalf("expected a fractional score for the fixture, got %v", score)
	}

	searcher := &stubSearcher{results: [][]matcher.Candidate{{shawshank}}}
	atBoundary := newMatcher(t, searcher, matcher.WithThreshold(score))
	res, err := atBoundary.Match(context.Background(), q)
	if err != nil || res.ID != shawshank.ID {
		t.Fatalf("expected score equal to threshold to match, got %+v, %v", res, err)
	}

	above := newMatcher(t, searcher, matcher.WithThreshold(score+0.00001))
	res, err = above.Match(context.Background(), q)
	if err != nil || res.Matched() {
		t.Fatalf("expected score below threshold to be rejected, got %+v, %v", res, err)
	}
}

func TestScoreAppliesLengthPenaltyAndYearBonus(t *testing.T) {
	raw := textutil.DiceSimilarity("Shawshank", shawshank.Title)

	score, _ := matcher.Score(matcher.Query{Title: "Shawshank"}, shawshank)
	if math.Abs(score-(raw-matcher.LengthPenalty)) > 1e-9 {
		t.Fatalf("expected length penalty, raw=%v score=%v", raw, score)
	}

	withYear, _ := matcher.Score(matcher.Query{Title: "Shawshank", Year: 1995}, shawshank)
	if math.Abs(withYear-(score+matcher.YearBonus)) > 1e-9 {
		t.Fatalf("expected year bonus within tolerance, got %v vs %v", withYear, score)
	}

	farYear, _ := matcher.Score(matcher.Query{Title: "Shawshank", Year: 1997}, shawshank)
	if farYear != score {
		t.Fatalf("expected no bonus outside tolerance, got %v vs %v", farYear, score)
	}
}

func TestScoreUsesAlternateTitleAndRomanization(t *testing.T) {
	candidate := matcher.Candidate{ID: "16498", Title: "Shingeki no Kyōjin"}

	score, matched := matcher.Score(matcher.Query{Title: "Attack on Titan", AltTitle: "Shingeki no Kyojin"}, candidate)
	if score != 1 || matched != "Shingeki no Kyojin" {
		t.Fatalf("expected alternate title to match exactly, got %v via %q", score, matched)
	}

	score, _ = matcher.Score(matcher.Query{Title: "Shingeki no Kyoujin"}, candidate)
	if score != 1 {
		t.Fatalf("expected ou romanization variant to match, got %v", score)
	}
}

func TestMatchCachesOutcomesIncludingNoMatch(t *testing.T) {
	searcher := &stubSearcher{results: [][]matcher.Candidate{{{ID: "tt1", Title: "Something Else"}}}}
	m := newMatcher(t, searcher)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := m.Match(ctx, matcher.Query{Title: "Unknown Film", Year: 2001})
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if res.Matched() {
			t.Fatalf("expected no match, got %+v", res)
		}
		if i > 0 && !res.Cached {
			t.Fatalf("expected cached no-match on call %d", i+1)
		}
	}
	if searcher.count() != 1 {
		t.Fatalf("expected one upstream search, got %d", searcher.count())
	}

	if _, err := m.Match(ctx, matcher.Query{Title: "unknown   FILM!", Year: 2001}); err != nil {
		t.Fatalf("Match: %v", err)
	}
	if searcher.count() != 1 {
		t.Fatalf("expected normalized title to share the cache key, got %d searches", searcher.count())
	}
}

func TestMatchDoesNotCacheTransientFailures(t *testing.T) {
	searcher := &stubSearcher{
		errs:    []error{services.Wrap(services.ErrDailyLimitExceeded, "imdbapi", "search", "", nil)},
		results: [][]matcher.Candidate{nil, {shawshank}},
	}
	m := newMatcher(t, searcher)
	ctx := context.Background()
	q := matcher.Query{Title: "The Shawshank Redemption"}

	res, err := m.Match(ctx, q)
	if err != nil {
		t.Fatalf("expected transient failure to surface as no-match, got %v", err)
	}
	if res.Matched() || !errors.Is(res.Failure, services.ErrDailyLimitExceeded) {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = m.Match(ctx, q)
	if err != nil || res.ID != shawshank.ID || res.Cached {
		t.Fatalf("expected fresh search after transient failure, got %+v, %v", res, err)
	}
}

func TestMatchCacheExpires(t *testing.T) {
	var mu sync.Mutex
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	searcher := &stubSearcher{results: [][]matcher.Candidate{{shawshank}}}
	m := newMatcher(t, searcher, matcher.WithClock(clock))
	ctx := context.Background()
	q := matcher.Query{Title: "The Shawshank Redemption"}

	if _, err := m.Match(ctx, q); err != nil {
		t.Fatalf("Match: %v", err)
	}
	mu.Lock()
	now = now.Add(matcher.DefaultCacheTTL + time.Millisecond)
	mu.Unlock()
	if _, err := m.Match(ctx, q); err != nil {
		t.Fatalf("Match: %v", err)
	}
	if searcher.count() != 2 {
		t.Fatalf("expected expired entry to trigger a new search, got %d", searcher.count())
	}
}

func TestMatchRejectsEmptyTitle(t *testing.T) {
	m := newMatcher(t, &stubSearcher{})
	for _, title := range []string{"", "   ", "?!"} {
		if _, err := m.Match(context.Background(), matcher.Query{Title: title}); !errors.Is(err, services.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %q, got %v", title, err)
		}
	}
}
