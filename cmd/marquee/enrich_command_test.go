package main

import (
	"encoding/json"
	"testing"

	"marquee/internal/metadata"
	"marquee/internal/testsupport"
)

func TestEnrichThenShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"enrich", "tt0111161"}, env.configPath)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	requireContains(t, out, "The Shawshank Redemption (1994)")
	requireContains(t, out, "complete via cinemeta, imdbapi")
	requireContains(t, out, "Frank Darabont")

	out, _, err = runCLI(t, []string{"show", "tt0111161", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var rec metadata.Record
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode show output: %v\n%s", err, out)
	}
	if rec.ID != "tt0111161" || rec.Stage != metadata.StageComplete || rec.Runtime.Minutes != 142 {
		t.Fatalf("unexpected stored record: id=%s stage=%v runtime=%v", rec.ID, rec.Stage, rec.Runtime)
	}

	out, _, err = runCLI(t, []string{"show"}, env.configPath)
	if err != nil {
		t.Fatalf("show list: %v", err)
	}
	requireContains(t, out, "tt0111161")
}

func TestEnrichByTitleUsesSearch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"enrich", "--year", "1994", "--json", "The", "Shawshank", "Redemption"}, env.configPath)
	if err != nil {
		t.Fatalf("enrich title: %v", err)
	}
	var rec metadata.Record
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if rec.ID != "tt0111161" {
		t.Fatalf("expected title to resolve to tt0111161, got %q", rec.ID)
	}
}

func TestShowMissingRecord(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"show", "tt0000001"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown record")
	}
}

func TestDiscoveryFromArgs(t *testing.T) {
	d, err := discoveryFromArgs([]string{"tt0111161"}, 0, "")
	if err != nil || d.ID != "tt0111161" || d.Title != "" {
		t.Fatalf("id arg: %+v err=%v", d, err)
	}
	d, err = discoveryFromArgs([]string{"Cowboy", "Bebop"}, 1998, "tv")
	if err != nil {
		t.Fatalf("title arg: %v", err)
	}
	if d.Title != "Cowboy Bebop" || d.Year != 1998 || d.Kind != metadata.KindSeries {
		t.Fatalf("unexpected discovery: %+v", d)
	}
	if _, err := discoveryFromArgs([]string{"x"}, 0, "podcast"); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
	if _, err := discoveryFromArgs([]string{"  "}, 0, ""); err == nil {
		t.Fatal("expected blank input to fail")
	}
}

func TestSourcesCommandListsWiring(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"sources"}, env.configPath)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	requireContains(t, out, "cinemeta")
	requireContains(t, out, "disabled")
	requireContains(t, out, "1ms")
}

func TestShowListsStoredRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	st := testsupport.MustOpenStore(t, env.cfg)
	testsupport.SaveRecord(t, st, metadata.Record{
		ID:      "tt0903747",
		Title:   "Breaking Bad",
		Year:    2008,
		Kind:    metadata.KindSeries,
		Sources: []string{"cinemeta"},
		Stage:   metadata.StageSingleSource,
	})

	out, _, err := runCLI(t, []string{"show", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Breaking Bad")
	requireContains(t, out, "single_source")
	if env.imdb.Hits() != 0 {
		t.Fatalf("show must not reach the network, got %d hits", env.imdb.Hits())
	}
}
