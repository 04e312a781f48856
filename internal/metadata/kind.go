package metadata

import (
	"strings"
	"unicode"
)

// Kind is the two-valued media kind. The zero value means not yet resolved.
type Kind string

const (
	KindUnknown Kind = ""
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
)

func (k Kind) Known() bool {
	return k == KindMovie || k == KindSeries
}

var kindAliases = map[string]Kind{
	"movie":        KindMovie,
	"film":         KindMovie,
	"feature":      KindMovie,
	"tvmovie":      KindMovie,
	"short":        KindMovie,
	"tvshort":      KindMovie,
	"video":        KindMovie,
	"special":      KindMovie,
	"tvspecial":    KindMovie,
	"music":        KindMovie,
	"series":       KindSeries,
	"show":         KindSeries,
	"tv":           KindSeries,
	"tvseries":     KindSeries,
	"tvminiseries": KindSeries,
	"miniseries":   KindSeries,
	"tvepisode":    KindSeries,
	"episode":      KindSeries,
	"ova":          KindSeries,
	"ona":          KindSeries,
	"anime":        KindSeries,
}

// ParseKind collapses a source-specific type label ("tvMiniSeries", "OVA",
// "TV Movie", ...) into Kind. Unrecognized labels report false.
func ParseKind(value string) (Kind, bool) {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	kind, ok := kindAliases[b.String()]
	return kind, ok
}
