package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	doubledVowels = strings.NewReplacer(
		"ā", "aa", "ī", "ii", "ū", "uu", "ē", "ee", "ō", "oo",
		"Ā", "Aa", "Ī", "Ii", "Ū", "Uu", "Ē", "Ee", "Ō", "Oo",
		"â", "aa", "î", "ii", "û", "uu", "ê", "ee", "ô", "oo",
		"Â", "Aa", "Î", "Ii", "Û", "Uu", "Ê", "Ee", "Ô", "Oo",
	)
	wapuroVowels = strings.NewReplacer(
		"ā", "aa", "ī", "ii", "ū", "uu", "ē", "ei", "ō", "ou",
		"Ā", "Aa", "Ī", "Ii", "Ū", "Uu", "Ē", "Ei", "Ō", "Ou",
		"â", "aa", "î", "ii", "û", "uu", "ê", "ei", "ô", "ou",
		"Â", "Aa", "Î", "Ii", "Û", "Uu", "Ê", "Ei", "Ô", "Ou",
	)
)

// RomanizationVariants returns title followed by its long-vowel expansions:
// one doubling each marked vowel ("ō" -> "oo") and one using the "ou"/"ei"
// spelling. Duplicates are dropped, so a title without marks yields one entry.
func RomanizationVariants(title string) []string {
	composed := norm.NFC.String(title)
	variants := []string{title}
	for _, candidate := range []string{doubledVowels.Replace(composed), wapuroVowels.Replace(composed)} {
		seen := false
		for _, v := range variants {
			if v == candidate {
				seen = true
				break
			}
		}
		if !seen {
			variants = append(variants, candidate)
		}
	}
	return variants
}
