// Package catalog turns public catalog feeds into enriched records.
//
// A feed is fetched directly and, when the host refuses the request, through
// a chain of CORS relay templates. Items are normalized into discoveries,
// optionally screened for reachable artwork, and enriched in parallel with
// priority. A Rotator refreshes the feed on a cron schedule and serves a
// rotating window of the results.
package catalog
