package textutil

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks after canonical decomposition.
func StripDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// SimilarityKey is the strict normalization used for similarity scoring:
// diacritics stripped, lowercased, only letters and digits kept.
func SimilarityKey(value string) string {
	value = StripDiacritics(value)
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// CleanTitle lowercases value, strips diacritics, and collapses whitespace
// and punctuation into single spaces.
func CleanTitle(value string) string {
	value = StripDiacritics(value)
	var b strings.Builder
	b.Grow(len(value))
	pendingSpace := false
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// CacheKey returns the search cache key for a title and optional year.
// A year of zero or less is omitted.
func CacheKey(title string, year int) string {
	key := CleanTitle(title)
	if year > 0 {
		key += "_" + strconv.Itoa(year)
	}
	return key
}
