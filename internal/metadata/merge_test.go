package metadata_test

import (
	"reflect"
	"testing"

	"marquee/internal/metadata"
)

func fullRecord() metadata.Record {
	return metadata.Record{
		ID:            "tt0111161",
		SecondaryIDs:  map[string]string{"tmdb": "278"},
		Title:         "The Shawshank Redemption",
		OriginalTitle: "The Shawshank Redemption",
		Kind:          metadata.KindMovie,
		Plot:          "Two imprisoned men bond over a number of years.",
		PlotSource:    "cinemeta",
		Tagline:       "Fear can hold you prisoner.",
		Runtime:       metadata.Runtime{Minutes: 142},
		Year:          1994,
		Status:        "Released",
		Cast:          []metadata.Person{{Name: "Tim Robbins", ImageURL: "https://img/tim.jpg"}},
		Directors:     []metadata.Person{{Name: "Frank Darabont"}},
		Genres:        []string{"Drama"},
		Ratings:       map[string]metadata.Rating{"imdb": {Score: 9.3, Votes: 2900000}},
		Images:        metadata.Images{Poster: "https://img/poster.jpg", Background: "https://img/bg.jpg"},
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	policy := metadata.DefaultPolicy()
	incoming := metadata.Record{
		ID:           "tt0111161",
		Plot:         "Override plot",
		Genres:       []string{"Crime", "drama"},
		Interests:    []string{"Prison Drama"},
		Demographics: []string{"Seinen"},
		Runtime:      metadata.Runtime{Minutes: 140},
		Cast: []metadata.Person{
			{Name: "Morgan Freeman", ImageURL: "https://img/morgan.jpg"},
			{Name: "Tim Robbins"},
			{Name: "Bob Gunton"},
		},
		Writers: []metadata.Person{{Name: "Stephen King", Role: "novel"}},
		Ratings: map[string]metadata.Rating{"rottentomatoes": {Score: 89}},
		Images:  metadata.Images{Logo: "https://img/logo.png"},
	}

	for _, source := range []string{"imdbapi", "mdblist", "jikan"} {
		once := policy.Merge(fullRecord(), source, incoming)
		twice := policy.Merge(once, source, incoming)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("merge from %s not idempotent:\nonce:  %+v\ntwice: %+v", source, once, twice)
		}
	}
}

func TestMergeNeverClearsScalars(t *testing.T) {
	existing := fullRecord()
	merged := metadata.DefaultPolicy().Merge(existing, "imdbapi", metadata.Record{ID: existing.ID})

	checks := []struct {
		field     string
		got, want any
	}{
		{"title", merged.Title, existing.Title},
		{"original title", merged.OriginalTitle, existing.OriginalTitle},
		{"kind", merged.Kind, existing.Kind},
		{"plot", merged.Plot, existing.Plot},
		{"tagline", merged.Tagline, existing.Tagline},
		{"runtime", merged.Runtime, existing.Runtime},
		{"year", merged.Year, existing.Year},
		{"status", merged.Status, existing.Status},
		{"poster", merged.Images.Poster, existing.Images.Poster},
		{"imdb rating", merged.Ratings["imdb"], existing.Ratings["imdb"]},
		{"tmdb id", merged.SecondaryIDs["tmdb"], existing.SecondaryIDs["tmdb"]},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s changed: got %v want %v", c.field, c.got, c.want)
		}
	}
	if !reflect.DeepEqual(merged.Cast, existing.Cast) || !reflect.DeepEqual(merged.Genres, existing.Genres) {
		t.Fatalf("lists changed: %+v", merged)
	}
}

func TestMergeUnionsGenresWithoutDuplicates(t *testing.T) {
	existing := metadata.Record{Genres: []string{"Drama", "Crime"}}
	incoming := metadata.Record{Genres: []string{"crime", "Thriller", " Drama "}}
	merged := metadata.DefaultPolicy().Merge(existing, "cinemeta", incoming)

	want := []string{"Drama", "Crime", "Thriller"}
	if !reflect.DeepEqual(merged.Genres, want) {
		t.Fatalf("Genres = %v, want %v", merged.Genres, want)
	}
}

func TestMergeRuntimeFirstWriterWins(t *testing.T) {
	policy := metadata.DefaultPolicy()
	rec := policy.Merge(metadata.Record{}, "cinemeta", metadata.Record{Runtime: metadata.Runtime{Minutes: 142}})
	rec = policy.Merge(rec, "mdblist", metadata.Record{Runtime: metadata.Runtime{Minutes: 150}})
	if rec.Runtime.Minutes != 142 {
		t.Fatalf("expected first runtime to stick, got %d", rec.Runtime.Minutes)
	}
}

func TestMergeDemographicsOverwriteWhenPresent(t *testing.T) {
	policy := metadata.DefaultPolicy()
	rec := metadata.Record{Demographics: []string{"Shounen"}}

	kept := policy.Merge(rec, "cinemeta", metadata.Record{})
	if !reflect.DeepEqual(kept.Demographics, []string{"Shounen"}) {
		t.Fatalf("expected demographics kept when incoming absent, got %v", kept.Demographics)
	}
	replaced := policy.Merge(rec, "jikan", metadata.Record{Demographics: []string{"Seinen"}})
	if !reflect.DeepEqual(replaced.Demographics, []string{"Seinen"}) {
		t.Fatalf("expected incoming demographics to win, got %v", replaced.Demographics)
	}
}

func TestMergePlotFollowsPriority(t *testing.T) {
	policy := metadata.DefaultPolicy()
	rec := policy.Merge(metadata.Record{}, "imdbapi", metadata.Record{Plot: "A"})
	rec = policy.Merge(rec, "cinemeta", metadata.Record{Plot: "B"})
	if rec.Plot != "A" || rec.PlotSource != "imdbapi" {
		t.Fatalf("expected equal-priority plot to keep the first writer, got %q from %s", rec.Plot, rec.PlotSource)
	}
	rec = policy.Merge(rec, "mdblist", metadata.Record{Plot: "C"})
	if rec.Plot != "C" || rec.PlotSource != "mdblist" {
		t.Fatalf("expected higher-priority plot to replace, got %q from %s", rec.Plot, rec.PlotSource)
	}
	rec = policy.Merge(rec, "cinemeta", metadata.Record{Plot: "D"})
	if rec.Plot != "C" {
		t.Fatalf("expected lower-priority plot to be ignored, got %q", rec.Plot)
	}
}

func TestMergeCreditsPhotoFirstAndCapped(t *testing.T) {
	policy := metadata.DefaultPolicy()
	policy.CastLimit = 4

	existing := metadata.Record{
		CreditsSource: "cinemeta",
		Cast: []metadata.Person{
			{Name: "Tim Robbins"},
			{Name: "Morgan Freeman"},
			{Name: "Clancy Brown"},
		},
	}
	incoming := metadata.Record{
		Cast: []metadata.Person{
			{Name: "Bob Gunton"},
			{Name: "Morgan  FREEMAN", ImageURL: "https://img/morgan.jpg"},
			{Name: "William Sadler", ImageURL: "https://img/william.jpg"},
		},
		Directors: []metadata.Person{{Name: "Frank Darabont"}, {Name: "Someone Else"}, {Name: "Third Person"}},
	}

	merged := policy.Merge(existing, "imdbapi", incoming)
	names := make([]string, 0, len(merged.Cast))
	for _, p := range merged.Cast {
		names = append(names, p.Name)
	}
	want := []string{"Morgan  FREEMAN", "William Sadler", "Bob Gunton", "Tim Robbins"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("cast = %v, want %v", names, want)
	}
	if len(merged.Directors) != metadata.MaxDirectors {
		t.Fatalf("expected directors capped at %d, got %d", metadata.MaxDirectors, len(merged.Directors))
	}
	if merged.CreditsSource != "imdbapi" {
		t.Fatalf("expected higher-priority credits source to lead, got %q", merged.CreditsSource)
	}
}

func TestAddSourceDerivesStage(t *testing.T) {
	required := []string{"cinemeta", "imdbapi"}
	var rec metadata.Record
	if rec.Stage != metadata.StageUnenriched {
		t.Fatalf("expected zero stage to be unenriched")
	}
	rec.AddSource("cinemeta", required)
	if rec.Stage != metadata.StageSingleSource {
		t.Fatalf("expected single source, got %s", rec.Stage)
	}
	rec.AddSource("jikan", required)
	if rec.Stage != metadata.StageMerged {
		t.Fatalf("expected merged, got %s", rec.Stage)
	}
	rec.AddSource("imdbapi", required)
	rec.AddSource("imdbapi", required)
	if rec.Stage != metadata.StageComplete || len(rec.Sources) != 3 {
		t.Fatalf("expected complete with three sources, got %s %v", rec.Stage, rec.Sources)
	}

	text, err := rec.Stage.MarshalText()
	if err != nil || string(text) != "complete" {
		t.Fatalf("MarshalText = %q, %v", text, err)
	}
	var decoded metadata.Stage
	if err := decoded.UnmarshalText([]byte("merged")); err != nil || decoded != metadata.StageMerged {
		t.Fatalf("UnmarshalText = %v, %v", decoded, err)
	}
}
