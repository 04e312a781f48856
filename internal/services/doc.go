// Package services defines shared utilities consumed by the enrichment engine,
// its metadata sources, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp record IDs, source names, and correlation
//     identifiers for logging.
//   - The error taxonomy (timeout, rate limited, HTTP status, daily limit,
//     mismatched response, invalid input) plus the Wrap helper that tags
//     failures with a marker for later classification.
//
// Use these helpers when wiring new sources so error handling and
// observability stay uniform across the pipeline.
package services
