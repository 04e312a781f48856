package imdbapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"marquee/internal/matcher"
	"marquee/internal/metadata"
	"marquee/internal/ratelimit"
	"marquee/internal/services"
	"marquee/internal/sources"
	"marquee/internal/sources/imdbapi"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func castNames(people []metadata.Person) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return names
}

func TestNormalizeTitle(t *testing.T) {
	rec, err := imdbapi.Normalize("tt0111161", readFixture(t, "title.json"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.Kind != metadata.KindMovie || rec.Year != 1994 || rec.Runtime.Minutes != 142 {
		t.Fatalf("unexpected fields: %+v", rec)
	}
	if got := rec.Ratings["imdb"]; got.Score != 9.3 || got.Votes != 3012345 {
		t.Fatalf("unexpected rating: %+v", got)
	}
	if !reflect.DeepEqual(rec.Interests, []string{"Drama", "Prison Drama"}) {
		t.Fatalf("interests = %v", rec.Interests)
	}
	if !reflect.DeepEqual(castNames(rec.Cast), []string{"Tim Robbins", "Morgan Freeman", "Bob Gunton"}) {
		t.Fatalf("cast = %v", castNames(rec.Cast))
	}
	if !reflect.DeepEqual(castNames(rec.Writers), []string{"Frank Darabont", "Stephen King"}) {
		t.Fatalf("expected photo-bearing writer first, got %v", castNames(rec.Writers))
	}
}

func TestNormalizeRejectsMismatch(t *testing.T) {
	if _, err := imdbapi.Normalize("tt0068646", readFixture(t, "title.json")); !errors.Is(err, services.ErrMismatchedResponse) {
		t.Fatalf("expected mismatched response, got %v", err)
	}
	if _, err := imdbapi.Normalize("tt0068646", []byte(`{"primaryTitle":"No id"}`)); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found when payload lacks id, got %v", err)
	}
}

func TestApplyCreditsKeepsBillingAndFillsRoles(t *testing.T) {
	rec, err := imdbapi.Normalize("tt0111161", readFixture(t, "title.json"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	rec, err = imdbapi.ApplyCredits(rec, readFixture(t, "credits.json"))
	if err != nil {
		t.Fatalf("ApplyCredits: %v", err)
	}
	want := []string{"Tim Robbins", "Morgan Freeman", "William Sadler", "Bob Gunton", "Clancy Brown"}
	if !reflect.DeepEqual(castNames(rec.Cast), want) {
		t.Fatalf("cast = %v, want %v", castNames(rec.Cast), want)
	}
	if rec.Cast[0].Role != "Andy Dufresne" {
		t.Fatalf("expected role from credits listing, got %q", rec.Cast[0].Role)
	}
	if len(rec.Directors) != 1 || !rec.Directors[0].HasPhoto() {
		t.Fatalf("expected deduped director with photo, got %+v", rec.Directors)
	}
}

func TestDecodeSearchSkipsEntriesWithoutID(t *testing.T) {
	candidates, err := imdbapi.DecodeSearch(readFixture(t, "search.json"))
	if err != nil {
		t.Fatalf("DecodeSearch: %v", err)
	}
	want := []matcher.Candidate{
		{ID: "tt0111161", Title: "The Shawshank Redemption", Year: 1994},
		{ID: "tt5765186", Title: "The Shawshank Redemption", Year: 2016},
		{ID: "tt1045778", Title: "Shawshank: The Redeeming Feature", Year: 2001},
	}
	if !reflect.DeepEqual(candidates, want) {
		t.Fatalf("candidates = %+v", candidates)
	}
}

func newClient(t *testing.T, handler http.Handler) *imdbapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	limiter := ratelimit.New()
	t.Cleanup(limiter.Close)
	if err := limiter.Register(ratelimit.SourceConfig{Name: imdbapi.Name, Interval: time.Millisecond}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	client, err := imdbapi.New(limiter, server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestFetchCombinesTitleAndCredits(t *testing.T) {
	title := readFixture(t, "title.json")
	credits := readFixture(t, "credits.json")
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/titles/tt0111161":
			_, _ = w.Write(title)
		case "/titles/tt0111161/credits":
			if got := r.URL.Query()["categories"]; len(got) == 0 {
				t.Errorf("expected categories query, got %q", r.URL.RawQuery)
			}
			_, _ = w.Write(credits)
		default:
			http.NotFound(w, r)
		}
	}))

	rec, err := client.Fetch(context.Background(), sources.Request{ID: "tt0111161"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rec.Cast) != 5 {
		t.Fatalf("expected merged credits, got %v", castNames(rec.Cast))
	}
}

func TestFetchToleratesCreditsFailure(t *testing.T) {
	title := readFixture(t, "title.json")
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/titles/tt0111161" {
			_, _ = w.Write(title)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec, err := client.Fetch(context.Background(), sources.Request{ID: "tt0111161"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rec.Cast) != 3 {
		t.Fatalf("expected star credits to survive, got %v", castNames(rec.Cast))
	}
}

func TestFetchMapsMissingTitleToNotFound(t *testing.T) {
	client := newClient(t, http.NotFoundHandler())
	if _, err := client.Fetch(context.Background(), sources.Request{ID: "tt0000000"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchBacksMatcher(t *testing.T) {
	search := readFixture(t, "search.json")
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/titles" || r.URL.Query().Get("query") == "" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(search)
	}))
	m, err := matcher.New(client, matcher.WithName(imdbapi.Name))
	if err != nil {
		t.Fatalf("matcher.New: %v", err)
	}
	res, err := m.Match(context.Background(), matcher.Query{Title: "The Shawshank Redemption", Year: 1994})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.ID != "tt0111161" {
		t.Fatalf("expected tt0111161, got %+v", res)
	}
}
