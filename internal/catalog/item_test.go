package catalog_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"marquee/internal/catalog"
	"marquee/internal/enrichment"
	"marquee/internal/metadata"
	"marquee/internal/services"
)

func feedItems(t *testing.T, name string) []json.RawMessage {
	t.Helper()
	items, err := catalog.ParseFeed(readFixture(t, name))
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}
	return items
}

func TestNormalizeCinemetaItems(t *testing.T) {
	items := feedItems(t, "cinemeta_top.json")

	movie, err := catalog.NormalizeItem(items[0])
	if err != nil {
		t.Fatalf("NormalizeItem: %v", err)
	}
	want := enrichment.Discovery{
		ID:           "tt0111161",
		SecondaryIDs: map[string]string{"tmdb": "278"},
		Title:        "The Shawshank Redemption",
		Year:         1994,
		Kind:         metadata.KindMovie,
		Priority:     true,
	}
	if !reflect.DeepEqual(movie.Discovery, want) {
		t.Fatalf("discovery = %+v, want %+v", movie.Discovery, want)
	}
	if movie.Poster == "" || movie.Art() != "https://images.metahub.space/background/medium/tt0111161/img" {
		t.Fatalf("expected background art to be screened, got poster=%q art=%q", movie.Poster, movie.Art())
	}

	series, err := catalog.NormalizeItem(items[1])
	if err != nil {
		t.Fatalf("NormalizeItem: %v", err)
	}
	if series.Art() != series.Poster {
		t.Fatalf("art should fall back to the poster, got %q", series.Art())
	}
	if series.Discovery.Year != 2008 || series.Discovery.Kind != metadata.KindSeries || series.Discovery.SecondaryIDs["tvdb"] != "81189" {
		t.Fatalf("unexpected series discovery: %+v", series.Discovery)
	}

	titleOnly, err := catalog.NormalizeItem(items[2])
	if err != nil {
		t.Fatalf("NormalizeItem: %v", err)
	}
	if titleOnly.Discovery.ID != "" || titleOnly.Discovery.Title != "Cowboy Bebop" || titleOnly.Discovery.Year != 1998 {
		t.Fatalf("non-imdb ids should leave the id empty: %+v", titleOnly.Discovery)
	}

	if _, err := catalog.NormalizeItem(items[3]); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty entry, got %v", err)
	}
}

func TestNormalizeListItems(t *testing.T) {
	items := feedItems(t, "mdblist_list.json")
	show, err := catalog.NormalizeItem(items[1])
	if err != nil {
		t.Fatalf("NormalizeItem: %v", err)
	}
	want := enrichment.Discovery{
		ID:           "tt2560140",
		SecondaryIDs: map[string]string{"tmdb": "1429"},
		Title:        "Attack on Titan",
		Year:         2013,
		Kind:         metadata.KindSeries,
		Priority:     true,
	}
	if !reflect.DeepEqual(show.Discovery, want) {
		t.Fatalf("discovery = %+v, want %+v", show.Discovery, want)
	}
	if _, err := catalog.NormalizeItem(json.RawMessage(`"tt0111161"`)); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input for scalar item, got %v", err)
	}
}
