package jikan_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/metadata"
	"marquee/internal/ratelimit"
	"marquee/internal/services"
	"marquee/internal/sources"
	"marquee/internal/sources/jikan"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func TestNormalizeAnime(t *testing.T) {
	rec, err := jikan.Normalize("16498", readFixture(t, "anime_full.json"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.ID != "" || rec.Title != "" {
		t.Fatalf("expected no primary identity fields, got %q %q", rec.ID, rec.Title)
	}
	if rec.SecondaryIDs["mal"] != "16498" || rec.Kind != metadata.KindSeries {
		t.Fatalf("unexpected identity: %+v %q", rec.SecondaryIDs, rec.Kind)
	}
	if rec.Runtime != (metadata.Runtime{Minutes: 24, PerEpisode: true}) || rec.EpisodeCount != 25 {
		t.Fatalf("unexpected runtime: %+v episodes=%d", rec.Runtime, rec.EpisodeCount)
	}
	if got := rec.Ratings["mal"]; got.Score != 8.55 || got.Votes != 2754231 {
		t.Fatalf("unexpected mal rating: %+v", got)
	}
	if rec.Plot != "Centuries ago, mankind was slaughtered to near extinction by monstrous humanoid creatures called Titans." {
		t.Fatalf("attribution not stripped: %q", rec.Plot)
	}
	if !reflect.DeepEqual(rec.Demographics, []string{"Shounen"}) {
		t.Fatalf("demographics = %v", rec.Demographics)
	}
	if !reflect.DeepEqual(rec.Genres, []string{"Action", "Drama", "Suspense"}) {
		t.Fatalf("genres = %v", rec.Genres)
	}
	if !reflect.DeepEqual(rec.Interests, []string{"Gore", "Military", "Survival"}) {
		t.Fatalf("interests = %v", rec.Interests)
	}
	if rec.Year != 2013 || rec.Status != "Finished Airing" {
		t.Fatalf("unexpected year/status: %d %q", rec.Year, rec.Status)
	}
}

func TestNormalizeRejectsOtherMalID(t *testing.T) {
	if _, err := jikan.Normalize("25777", readFixture(t, "anime_full.json")); !errors.Is(err, services.ErrMismatchedResponse) {
		t.Fatalf("expected mismatched response, got %v", err)
	}
	if _, err := jikan.Normalize("1", []byte(`{"data":null}`)); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDecodeSearchFallsBackToAiredYear(t *testing.T) {
	candidates, err := jikan.DecodeSearch(readFixture(t, "search.json"))
	if err != nil {
		t.Fatalf("DecodeSearch: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[2].ID != "18397" || candidates[2].Year != 2013 {
		t.Fatalf("unexpected third candidate: %+v", candidates[2])
	}
}

type harness struct {
	client   *jikan.Client
	searches atomic.Int32
	fetches  atomic.Int32
}

func newHarness(t *testing.T, search []byte) *harness {
	t.Helper()
	h := &harness{}
	full := readFixture(t, "anime_full.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/anime":
			h.searches.Add(1)
			_, _ = w.Write(search)
		case "/anime/16498/full":
			h.fetches.Add(1)
			_, _ = w.Write(full)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	limiter := ratelimit.New()
	t.Cleanup(limiter.Close)
	if err := limiter.Register(ratelimit.SourceConfig{Name: jikan.Name, Interval: time.Millisecond}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	client, err := jikan.New(limiter, server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.client = client
	return h
}

func TestFetchResolvesMalIDByTitle(t *testing.T) {
	h := newHarness(t, readFixture(t, "search.json"))
	req := sources.Request{ID: "tt2560140", Title: "Attack on Titan", AltTitle: "Shingeki no Kyojin", Year: 2013}

	rec, err := h.client.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rec.SecondaryIDs["mal"] != "16498" {
		t.Fatalf("expected resolved mal id, got %+v", rec.SecondaryIDs)
	}
	if _, err := h.client.Fetch(context.Background(), req); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if got := h.searches.Load(); got != 1 {
		t.Fatalf("expected cached match to skip search, got %d searches", got)
	}
	if got := h.fetches.Load(); got != 2 {
		t.Fatalf("expected 2 detail fetches, got %d", got)
	}
}

func TestFetchWithoutConfidentMatchIsNotFound(t *testing.T) {
	h := newHarness(t, readFixture(t, "search.json"))
	_, err := h.client.Fetch(context.Background(), sources.Request{Title: "Cowboy Bebop", Year: 1998})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if h.fetches.Load() != 0 {
		t.Fatal("detail endpoint should not be called without a match")
	}
}

func TestApplies(t *testing.T) {
	h := newHarness(t, nil)
	cases := []struct {
		name string
		rec  metadata.Record
		want bool
	}{
		{"mal id", metadata.Record{SecondaryIDs: map[string]string{"mal": "1"}}, true},
		{"animation genre", metadata.Record{Genres: []string{"Drama", "animation"}}, true},
		{"live action", metadata.Record{Genres: []string{"Drama"}}, false},
	}
	for _, tc := range cases {
		if got := h.client.Applies(tc.rec); got != tc.want {
			t.Fatalf("%s: Applies = %v, want %v", tc.name, got, tc.want)
		}
	}
}
