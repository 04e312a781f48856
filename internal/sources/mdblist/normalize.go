package mdblist

import (
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/sources"
)

// Name is the provider key used in records, config, and the limiter.
const Name = "mdblist"

// ratingProviders maps MDBList rating sources onto record rating keys.
// Sources not listed are dropped.
var ratingProviders = map[string]string{
	"imdb":             "imdb",
	"tmdb":             "tmdb",
	"tomatoes":         "rottentomatoes",
	"tomatoesaudience": "rottentomatoes_audience",
	"metacritic":       "metacritic",
	"metacriticuser":   "metacritic_user",
	"letterboxd":       "letterboxd",
	"trakt":            "trakt",
	"myanimelist":      "mal",
	"rogerebert":       "rogerebert",
}

// secondaryKeys maps payload id fields onto SecondaryIDs keys.
var secondaryKeys = []struct {
	key   string
	value func(IDs) any
}{
	{"tmdb", func(ids IDs) any { return ids.TMDb }},
	{"tvdb", func(ids IDs) any { return ids.TVDB }},
	{"trakt", func(ids IDs) any { return ids.Trakt }},
	{"mal", func(ids IDs) any { return ids.MAL }},
}

// Normalize maps a title payload onto a record for requestedID.
func Normalize(requestedID string, payload []byte) (metadata.Record, error) {
	var resp titleResponse
	if err := sources.Decode(Name, payload, &resp); err != nil {
		return metadata.Record{}, err
	}
	id := strings.TrimSpace(resp.IDs.IMDb)
	if id == "" || (resp.Response != nil && !*resp.Response) {
		detail := requestedID
		if resp.Error != "" {
			detail += ": " + resp.Error
		}
		return metadata.Record{}, sources.NotFound(Name, detail)
	}
	if requestedID != "" && id != requestedID {
		return metadata.Record{}, sources.Mismatch(Name, requestedID, id)
	}

	kind, _ := metadata.ParseKind(resp.Type)
	rec := metadata.Record{
		ID:      id,
		Title:   strings.TrimSpace(resp.Title),
		Kind:    kind,
		Plot:    strings.TrimSpace(resp.Description),
		Tagline: strings.TrimSpace(resp.Tagline),
		Year:    sources.Year(resp.Year),
		Runtime: metadata.NormalizeRuntime(kind, int(sources.Int(resp.Runtime)), false, 0),
	}
	if rec.Year == 0 {
		rec.Year = sources.Year(resp.Released)
	}

	for _, entry := range secondaryKeys {
		value := sources.String(entry.value(resp.IDs))
		if value == "" || value == "0" {
			continue
		}
		if rec.SecondaryIDs == nil {
			rec.SecondaryIDs = make(map[string]string)
		}
		rec.SecondaryIDs[entry.key] = value
	}

	for _, r := range resp.Ratings {
		provider, ok := ratingProviders[strings.ToLower(strings.TrimSpace(r.Source))]
		if !ok {
			continue
		}
		score := sources.Float(r.Value)
		if score <= 0 {
			continue
		}
		if rec.Ratings == nil {
			rec.Ratings = make(map[string]metadata.Rating)
		}
		rec.Ratings[provider] = metadata.Rating{Score: score, Votes: sources.Int(r.Votes)}
	}

	genres := make([]string, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, g.Title)
	}
	rec.Demographics, rec.Genres = metadata.SplitDemographics(genres)
	return rec, nil
}
