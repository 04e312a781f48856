package jikan

import (
	"regexp"
	"strconv"
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/sources"
)

// Name is the provider key used in records, config, and the limiter.
const Name = "jikan"

// SecondaryKey is the SecondaryIDs key holding the MyAnimeList id.
const SecondaryKey = "mal"

var attribution = regexp.MustCompile(`\s*\[Written by MAL Rewrite\]\s*$`)

// Normalize maps an /anime/{id}/full payload onto a record. requestedID is
// the MAL id. The record carries no primary id or title; those belong to
// the IMDb-keyed sources.
func Normalize(requestedID string, payload []byte) (metadata.Record, error) {
	var resp animeResponse
	if err := sources.Decode(Name, payload, &resp); err != nil {
		return metadata.Record{}, err
	}
	if resp.Data == nil || resp.Data.MalID == 0 {
		return metadata.Record{}, sources.NotFound(Name, requestedID)
	}
	return NormalizeAnime(requestedID, *resp.Data)
}

// NormalizeAnime maps a decoded entry.
func NormalizeAnime(requestedID string, a Anime) (metadata.Record, error) {
	id := strconv.Itoa(a.MalID)
	if requestedID != "" && id != strings.TrimSpace(requestedID) {
		return metadata.Record{}, sources.Mismatch(Name, requestedID, id)
	}
	kind, _ := metadata.ParseKind(a.Type)
	episodes := int(sources.Int(a.Episodes))
	minutes, perEpisode := metadata.ParseRuntime(a.Duration)

	rec := metadata.Record{
		SecondaryIDs: map[string]string{SecondaryKey: id},
		Kind:         kind,
		Plot:         attribution.ReplaceAllString(strings.TrimSpace(a.Synopsis), ""),
		Status:       strings.TrimSpace(a.Status),
		EpisodeCount: episodes,
		Runtime:      metadata.NormalizeRuntime(kind, minutes, perEpisode, episodes),
		Year:         sources.Year(a.Year),
	}
	if rec.Year == 0 {
		rec.Year = sources.Year(a.Aired.From)
	}
	if score := sources.Float(a.Score); score > 0 {
		rec.Ratings = map[string]metadata.Rating{SecondaryKey: {Score: score, Votes: sources.Int(a.ScoredBy)}}
	}

	var genreDemographics []string
	genreDemographics, rec.Genres = metadata.SplitDemographics(names(a.Genres))
	_, rec.Interests = metadata.SplitDemographics(names(a.Themes))
	explicit, _ := metadata.SplitDemographics(names(a.Demographics))
	rec.Demographics = metadata.UnionTags(explicit, genreDemographics)
	return rec, nil
}

func names(entities []Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}
