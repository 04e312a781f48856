package fanart_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marquee/internal/metadata"
	"marquee/internal/ratelimit"
	"marquee/internal/services"
	"marquee/internal/sources"
	"marquee/internal/sources/fanart"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func TestNormalizeMoviePicksPreferredArt(t *testing.T) {
	rec, err := fanart.Normalize("tt0111161", readFixture(t, "movie.json"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := metadata.Images{
		Poster:     "https://assets.fanart.tv/fanart/movies/278/movieposter/neutral.jpg",
		Background: "https://assets.fanart.tv/fanart/movies/278/moviebackground/plain.jpg",
		Logo:       "https://assets.fanart.tv/fanart/movies/278/hdmovielogo/en-high.png",
	}
	if rec.Images != want {
		t.Fatalf("images = %+v, want %+v", rec.Images, want)
	}
	if rec.ID != "" || rec.Title != "" {
		t.Fatalf("expected artwork-only record, got %+v", rec)
	}
}

func TestNormalizeAcceptsTMDBAndTVDBIDs(t *testing.T) {
	if _, err := fanart.Normalize("278", readFixture(t, "movie.json")); err != nil {
		t.Fatalf("tmdb lookup: %v", err)
	}
	rec, err := fanart.Normalize("267440", readFixture(t, "series.json"))
	if err != nil {
		t.Fatalf("tvdb lookup: %v", err)
	}
	if rec.Images.Logo == "" || rec.Images.Background == "" || rec.Images.Poster != "" {
		t.Fatalf("unexpected series images: %+v", rec.Images)
	}
}

func TestNormalizeRejectsMismatch(t *testing.T) {
	if _, err := fanart.Normalize("tt0068646", readFixture(t, "movie.json")); !errors.Is(err, services.ErrMismatchedResponse) {
		t.Fatalf("expected mismatched response, got %v", err)
	}
}

func TestBestImageIgnoresEmptyURLs(t *testing.T) {
	if got := fanart.BestImage([]fanart.Image{{URL: " ", Lang: "en"}}); got != "" {
		t.Fatalf("expected no image, got %q", got)
	}
}

func TestFetchUsesKindSpecificEndpoint(t *testing.T) {
	movie := readFixture(t, "movie.json")
	series := readFixture(t, "series.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/movies/tt0111161":
			_, _ = w.Write(movie)
		case "/tv/267440":
			_, _ = w.Write(series)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()
	limiter := ratelimit.New()
	defer limiter.Close()
	if err := limiter.Register(ratelimit.SourceConfig{Name: fanart.Name, Interval: time.Millisecond}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	client, err := fanart.New(limiter, server.URL, "secret")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Fetch(context.Background(), sources.Request{ID: "tt0111161", Kind: metadata.KindMovie}); err != nil {
		t.Fatalf("movie Fetch: %v", err)
	}
	seriesReq := sources.Request{ID: "tt2560140", Kind: metadata.KindSeries, SecondaryIDs: map[string]string{"tvdb": "267440"}}
	if _, err := client.Fetch(context.Background(), seriesReq); err != nil {
		t.Fatalf("series Fetch: %v", err)
	}
	missing := sources.Request{ID: "tt0000001", Kind: metadata.KindMovie}
	if _, err := client.Fetch(context.Background(), missing); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if client.Applies(metadata.Record{ID: "tt2560140", Kind: metadata.KindSeries}) {
		t.Fatal("series without tvdb id should not apply")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	limiter := ratelimit.New()
	defer limiter.Close()
	if _, err := fanart.New(limiter, "", " "); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
