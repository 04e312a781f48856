// Package config loads, normalizes, and validates marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MDBLIST_API_KEY and FANART_API_KEY. The Config type centralizes every knob
// the enrichment engine and CLI need: per-source pacing and daily caps, matcher
// thresholds, cache capacities, the plot priority table, and store selection.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
