package metadata

import "strings"

var demographicLabels = map[string]string{
	"shounen": "Shounen",
	"shonen":  "Shounen",
	"shoujo":  "Shoujo",
	"shojo":   "Shoujo",
	"seinen":  "Seinen",
	"josei":   "Josei",
	"kids":    "Kids",
}

// SplitDemographics separates audience-demographic labels from a genre or
// interest list. Labels match after ASCII folding, so "Shōnen" counts.
// Both results keep input order and drop duplicates.
func SplitDemographics(tags []string) (demographics, rest []string) {
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if label, ok := demographicLabels[foldKey(trimmed)]; ok {
			demographics = UnionTags(demographics, []string{label})
			continue
		}
		rest = UnionTags(rest, []string{trimmed})
	}
	return demographics, rest
}

// UnionTags returns existing followed by the incoming tags it lacks.
// Comparison is case-insensitive; the first spelling seen is kept.
func UnionTags(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			key := strings.ToLower(tag)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
