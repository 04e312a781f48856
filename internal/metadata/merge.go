package metadata

import "strings"

// Policy holds the field-level precedence knobs for Merge.
type Policy struct {
	// PlotPriority ranks sources for the plot field. An incoming plot replaces
	// the current one only when its source ranks strictly higher.
	PlotPriority map[string]int
	// CreditPriority decides which credit list leads the photo-first merge.
	// Ties keep the existing list in front.
	CreditPriority map[string]int

	CastLimit     int
	DirectorLimit int
	WriterLimit   int
}

// DefaultPolicy returns the built-in priority table. MDBList is the only
// source allowed to replace a plot written by another source.
func DefaultPolicy() Policy {
	return Policy{
		PlotPriority: map[string]int{
			"cinemeta": 1,
			"imdbapi":  1,
			"jikan":    1,
			"mdblist":  2,
		},
		CreditPriority: map[string]int{
			"cinemeta": 1,
			"imdbapi":  2,
		},
		CastLimit:     MaxCast,
		DirectorLimit: MaxDirectors,
		WriterLimit:   MaxWriters,
	}
}

// Merge folds incoming, contributed by source, into existing and returns the
// result. Neither input is modified.
//
// Scalars are overwrite-if-present: an absent incoming value never clears a
// set one. Runtime is first-writer-wins. Demographics are replaced whenever
// incoming carries any. Plot follows PlotPriority. Genres and interests
// merge as case-insensitive set unions. Credits merge photo-first across the
// leading and trailing lists with normalized-name dedupe and per-field caps.
func (p Policy) Merge(existing Record, source string, incoming Record) Record {
	out := existing.Clone()

	if out.ID == "" {
		out.ID = strings.TrimSpace(incoming.ID)
	}
	for provider, id := range incoming.SecondaryIDs {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if out.SecondaryIDs == nil {
			out.SecondaryIDs = make(map[string]string)
		}
		out.SecondaryIDs[provider] = id
	}

	setString(&out.Title, incoming.Title)
	setString(&out.OriginalTitle, incoming.OriginalTitle)
	setString(&out.Tagline, incoming.Tagline)
	setString(&out.Status, incoming.Status)
	if incoming.Kind.Known() {
		out.Kind = incoming.Kind
	}
	if incoming.Year > 0 {
		out.Year = incoming.Year
	}
	if incoming.EpisodeCount > 0 {
		out.EpisodeCount = incoming.EpisodeCount
	}

	if plot := strings.TrimSpace(incoming.Plot); plot != "" {
		if strings.TrimSpace(out.Plot) == "" || p.rank(p.PlotPriority, source) > p.rank(p.PlotPriority, out.PlotSource) {
			out.Plot = plot
			out.PlotSource = source
		}
	}

	if out.Runtime.IsZero() && !incoming.Runtime.IsZero() {
		out.Runtime = incoming.Runtime
	}

	if len(incoming.Demographics) > 0 {
		out.Demographics = UnionTags(nil, incoming.Demographics)
	}
	out.Genres = UnionTags(out.Genres, incoming.Genres)
	out.Interests = UnionTags(out.Interests, incoming.Interests)

	p.mergeCredits(&out, existing, source, incoming)

	for provider, rating := range incoming.Ratings {
		if rating.Score <= 0 {
			continue
		}
		if out.Ratings == nil {
			out.Ratings = make(map[string]Rating)
		}
		if rating.Votes == 0 {
			rating.Votes = out.Ratings[provider].Votes
		}
		out.Ratings[provider] = rating
	}

	setString(&out.Images.Poster, incoming.Images.Poster)
	setString(&out.Images.Background, incoming.Images.Background)
	setString(&out.Images.Logo, incoming.Images.Logo)

	return out
}

func (p Policy) mergeCredits(out *Record, existing Record, source string, incoming Record) {
	if len(incoming.Cast) == 0 && len(incoming.Directors) == 0 && len(incoming.Writers) == 0 {
		return
	}
	incomingLeads := existing.CreditsSource == "" && !hasCredits(existing) ||
		p.rank(p.CreditPriority, source) > p.rank(p.CreditPriority, existing.CreditsSource)

	combine := func(current, added []Person, limit int) []Person {
		if len(added) == 0 {
			return current
		}
		if incomingLeads {
			return mergeCredits(added, current, limit)
		}
		return mergeCredits(current, added, limit)
	}
	out.Cast = combine(out.Cast, incoming.Cast, p.CastLimit)
	out.Directors = combine(out.Directors, incoming.Directors, p.DirectorLimit)
	out.Writers = combine(out.Writers, incoming.Writers, p.WriterLimit)
	if incomingLeads {
		out.CreditsSource = source
	}
}

func hasCredits(r Record) bool {
	return len(r.Cast) > 0 || len(r.Directors) > 0 || len(r.Writers) > 0
}

func (p Policy) rank(table map[string]int, source string) int {
	if source == "" {
		return 0
	}
	return table[strings.ToLower(source)]
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}
