// Package matcher resolves free-text titles to external identifiers.
//
// A Matcher wraps one Searcher (IMDb title search, MyAnimeList search). It
// scores the top upstream candidates with trigram Dice similarity over
// romanization variants, applies a length-ratio penalty and a release-year
// bonus, and accepts the best candidate at or above the threshold. Outcomes,
// including "no match", are cached per normalized title and year; search
// failures are not.
package matcher
