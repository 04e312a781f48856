// Package enrichment turns a discovered title into a merged metadata record.
//
// The Orchestrator loads any stored record, resolves a missing IMDb id with
// the title matcher, settles the media kind through the kind-capable source,
// queries the remaining public sources in order and the private ones last,
// merges each contribution, and saves the result. Source failures are logged
// and skipped; only invalid caller input is returned as an error. Concurrent
// requests for the same title share one run.
//
// Intake feeds the orchestrator from a bounded queue of discovery events so
// producers never block on enrichment.
package enrichment
