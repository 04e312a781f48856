package metadata

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Credit list caps.
const (
	MaxCast      = 50
	MaxDirectors = 2
	MaxWriters   = 5
)

// NormalizePersonName folds a name to ASCII, lowercases it, and collapses
// whitespace so that "Zoë Kravitz" and "zoe  kravitz" compare equal.
func NormalizePersonName(name string) string {
	return foldKey(name)
}

func foldKey(value string) string {
	folded := strings.ToLower(unidecode.Unidecode(strings.TrimSpace(value)))
	return strings.Join(strings.Fields(folded), " ")
}

// DedupeCredits drops repeated people by normalized name, keeping the first
// position. When a later duplicate has a photo and the kept entry does not,
// the photo-bearing entry takes its place. A missing role is filled from
// the duplicate.
func DedupeCredits(people []Person) []Person {
	if len(people) == 0 {
		return nil
	}
	out := make([]Person, 0, len(people))
	index := make(map[string]int, len(people))
	for _, p := range people {
		p.Name = strings.TrimSpace(p.Name)
		key := NormalizePersonName(p.Name)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			kept := out[i]
			if !kept.HasPhoto() && p.HasPhoto() {
				if p.Role == "" {
					p.Role = kept.Role
				}
				out[i] = p
			} else if kept.Role == "" {
				out[i].Role = p.Role
			}
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out
}

// OrderCredits puts photo-bearing entries first, keeps source order within
// each group, and truncates to limit. A non-positive limit keeps everything.
func OrderCredits(people []Person, limit int) []Person {
	return mergeCredits(people, nil, limit)
}

// mergeCredits walks {primary, fallback} once for entries with photos and
// once for entries without, skipping names already taken.
func mergeCredits(primary, fallback []Person, limit int) []Person {
	total := len(primary) + len(fallback)
	if total == 0 {
		return nil
	}
	if limit <= 0 || limit > total {
		limit = total
	}
	out := make([]Person, 0, limit)
	seen := make(map[string]struct{}, total)
	for _, wantPhoto := range []bool{true, false} {
		for _, list := range [][]Person{primary, fallback} {
			for _, p := range list {
				if len(out) == limit {
					return out
				}
				if p.HasPhoto() != wantPhoto {
					continue
				}
				key := NormalizePersonName(p.Name)
				if key == "" {
					continue
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, p)
			}
		}
	}
	return out
}
