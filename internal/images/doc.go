// Package images checks that artwork URLs resolve before they are shown.
//
// A Validator probes candidate URLs with HEAD requests, walking the
// configured size ladder (w780, then original) before a caller-supplied
// fallback. Outcomes, including "nothing resolves", are remembered in a
// bounded LRU so repeated tiles do not re-probe. Probes that fail at the
// transport level are not remembered.
package images
