// Package textutil provides the string normalization and fuzzy similarity
// primitives used by title matching and credit deduplication.
//
// Two normalizations exist:
//   - SimilarityKey strips diacritics, lowercases, and drops every
//     non-alphanumeric rune. DiceSimilarity compares these keys.
//   - CleanTitle strips diacritics, lowercases, and collapses runs of
//     whitespace and punctuation into single spaces. CacheKey builds on it.
//
// DiceSimilarity scores padded character trigram sets with the Sørensen-Dice
// coefficient. RomanizationVariants expands long-vowel marks so that
// "Kyōjin", "Kyoojin", and "Kyoujin" can all be matched.
package textutil
