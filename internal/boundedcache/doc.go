// Package boundedcache provides the fixed-capacity LRU cache, optionally with
// a per-entry TTL, shared by the title matcher and the image validator.
//
// Eviction happens synchronously inside Set, so Len never exceeds the
// configured capacity. TTL expiry is checked on lookup; expired entries are
// deleted at that point rather than by a background sweeper.
package boundedcache
