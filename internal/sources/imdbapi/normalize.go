package imdbapi

import (
	"slices"
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/sources"
)

// Name is the provider key used in records, config, and the limiter.
const Name = "imdbapi"

// Normalize maps a /titles/{id} payload onto a record for requestedID.
func Normalize(requestedID string, payload []byte) (metadata.Record, error) {
	var title Title
	if err := sources.Decode(Name, payload, &title); err != nil {
		return metadata.Record{}, err
	}
	if strings.TrimSpace(title.ID) == "" {
		return metadata.Record{}, sources.NotFound(Name, requestedID)
	}
	return NormalizeTitle(requestedID, title)
}

// NormalizeTitle maps a decoded title.
func NormalizeTitle(requestedID string, title Title) (metadata.Record, error) {
	id := strings.TrimSpace(title.ID)
	if requestedID != "" && id != requestedID {
		return metadata.Record{}, sources.Mismatch(Name, requestedID, id)
	}
	kind, _ := metadata.ParseKind(title.Type)
	rec := metadata.Record{
		ID:            id,
		Title:         strings.TrimSpace(title.PrimaryTitle),
		OriginalTitle: strings.TrimSpace(title.OriginalTitle),
		Kind:          kind,
		Plot:          strings.TrimSpace(title.Plot),
		Year:          sources.Year(title.StartYear),
		Runtime:       metadata.NormalizeRuntime(kind, metadata.RuntimeFromSeconds(int(sources.Int(title.RuntimeSeconds))), false, 0),
	}
	if sources.Year(title.EndYear) > 0 {
		rec.Status = "Ended"
	}
	if title.PrimaryImage != nil {
		rec.Images.Poster = strings.TrimSpace(title.PrimaryImage.URL)
	}
	if title.Rating != nil {
		if score := sources.Float(title.Rating.AggregateRating); score > 0 {
			rec.Ratings = map[string]metadata.Rating{"imdb": {Score: score, Votes: sources.Int(title.Rating.VoteCount)}}
		}
	}

	interests := make([]string, 0, len(title.Interests))
	for _, in := range title.Interests {
		interests = append(interests, in.Name)
	}
	var genreDemographics, interestDemographics []string
	genreDemographics, rec.Genres = metadata.SplitDemographics(title.Genres)
	interestDemographics, rec.Interests = metadata.SplitDemographics(interests)
	rec.Demographics = metadata.UnionTags(genreDemographics, interestDemographics)

	rec.Cast = metadata.OrderCredits(metadata.DedupeCredits(people(title.Stars)), metadata.MaxCast)
	rec.Directors = metadata.OrderCredits(metadata.DedupeCredits(people(title.Directors)), metadata.MaxDirectors)
	rec.Writers = metadata.OrderCredits(metadata.DedupeCredits(people(title.Writers)), metadata.MaxWriters)
	return rec, nil
}

// ApplyCredits folds the full credits listing in behind the billed stars and
// crew from the title payload. Actors keep their first character as Role.
func ApplyCredits(rec metadata.Record, payload []byte) (metadata.Record, error) {
	var resp creditsResponse
	if err := sources.Decode(Name, payload, &resp); err != nil {
		return rec, err
	}
	var cast, directors, writers []metadata.Person
	for _, credit := range resp.Credits {
		p := person(credit.Name)
		switch strings.ToLower(credit.Category) {
		case "actor", "actress", "self", "voice":
			if len(credit.Characters) > 0 {
				p.Role = strings.TrimSpace(credit.Characters[0])
			}
			cast = append(cast, p)
		case "director":
			directors = append(directors, p)
		case "writer":
			writers = append(writers, p)
		}
	}
	// The stars list is the billing order; keep it in front of the long tail.
	if len(cast) > 0 {
		rec.Cast = metadata.OrderCredits(metadata.DedupeCredits(slices.Concat(rec.Cast, cast)), metadata.MaxCast)
	}
	if len(directors) > 0 {
		rec.Directors = metadata.OrderCredits(metadata.DedupeCredits(slices.Concat(rec.Directors, directors)), metadata.MaxDirectors)
	}
	if len(writers) > 0 {
		rec.Writers = metadata.OrderCredits(metadata.DedupeCredits(slices.Concat(rec.Writers, writers)), metadata.MaxWriters)
	}
	return rec, nil
}

func people(names []NameRef) []metadata.Person {
	out := make([]metadata.Person, 0, len(names))
	for _, n := range names {
		out = append(out, person(n))
	}
	return out
}

func person(n NameRef) metadata.Person {
	p := metadata.Person{Name: strings.TrimSpace(n.DisplayName)}
	if n.PrimaryImage != nil {
		p.ImageURL = strings.TrimSpace(n.PrimaryImage.URL)
	}
	return p
}
