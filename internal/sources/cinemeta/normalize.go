package cinemeta

import (
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/sources"
)

// Name is the provider key used in records, config, and the limiter.
const Name = "cinemeta"

// Normalize maps a /meta payload onto a record for requestedID.
func Normalize(requestedID string, payload []byte) (metadata.Record, error) {
	var resp metaResponse
	if err := sources.Decode(Name, payload, &resp); err != nil {
		return metadata.Record{}, err
	}
	if resp.Meta == nil || (resp.Meta.ID == "" && resp.Meta.IMDbID == "") {
		return metadata.Record{}, sources.NotFound(Name, requestedID)
	}
	return NormalizeMeta(requestedID, *resp.Meta)
}

// NormalizeMeta maps an already decoded Meta. Catalog entries use it too.
func NormalizeMeta(requestedID string, meta Meta) (metadata.Record, error) {
	id := strings.TrimSpace(meta.IMDbID)
	if id == "" {
		id = strings.TrimSpace(meta.ID)
	}
	if requestedID != "" && id != requestedID {
		return metadata.Record{}, sources.Mismatch(Name, requestedID, id)
	}

	kind, _ := metadata.ParseKind(meta.Type)
	episodes := countEpisodes(meta.Videos)
	minutes, perEpisode := metadata.ParseRuntime(meta.Runtime)

	rec := metadata.Record{
		ID:           id,
		Title:        strings.TrimSpace(meta.Name),
		Kind:         kind,
		Plot:         strings.TrimSpace(meta.Description),
		Year:         sources.Year(meta.Year),
		Status:       strings.TrimSpace(meta.Status),
		EpisodeCount: episodes,
		Runtime:      metadata.NormalizeRuntime(kind, minutes, perEpisode, episodes),
		Images: metadata.Images{
			Poster:     strings.TrimSpace(meta.Poster),
			Background: strings.TrimSpace(meta.Background),
			Logo:       strings.TrimSpace(meta.Logo),
		},
	}
	if rec.Year == 0 {
		rec.Year = sources.Year(meta.ReleaseInfo)
	}

	ids := map[string]string{}
	if tmdb := sources.String(meta.MovieDBID); tmdb != "" && tmdb != "0" {
		ids["tmdb"] = tmdb
	}
	if tvdb := sources.String(meta.TVDBID); tvdb != "" && tvdb != "0" {
		ids["tvdb"] = tvdb
	}
	if len(ids) > 0 {
		rec.SecondaryIDs = ids
	}

	tags := meta.Genres
	if len(tags) == 0 {
		tags = meta.Genre
	}
	rec.Demographics, rec.Genres = metadata.SplitDemographics(tags)

	if score := sources.Float(meta.IMDbRating); score > 0 {
		rec.Ratings = map[string]metadata.Rating{"imdb": {Score: score}}
	}

	rec.Cast = metadata.OrderCredits(metadata.DedupeCredits(credits(meta.AppExtras.Cast, meta.Cast)), metadata.MaxCast)
	rec.Directors = metadata.OrderCredits(metadata.DedupeCredits(credits(meta.AppExtras.Directors, sources.Strings(meta.Director))), metadata.MaxDirectors)
	rec.Writers = metadata.OrderCredits(metadata.DedupeCredits(credits(meta.AppExtras.Writers, sources.Strings(meta.Writer))), metadata.MaxWriters)
	return rec, nil
}

// credits prefers the app_extras entries, which carry photos, and appends
// bare names from the flat list.
func credits(extras []Credit, names []string) []metadata.Person {
	people := make([]metadata.Person, 0, len(extras)+len(names))
	for _, c := range extras {
		people = append(people, metadata.Person{
			Name:     strings.TrimSpace(c.Name),
			Role:     strings.TrimSpace(c.Character),
			ImageURL: strings.TrimSpace(c.Photo),
		})
	}
	for _, name := range names {
		people = append(people, metadata.Person{Name: strings.TrimSpace(name)})
	}
	return people
}

func countEpisodes(videos []Video) int {
	count := 0
	for _, v := range videos {
		if v.Season > 0 {
			count++
		}
	}
	return count
}
