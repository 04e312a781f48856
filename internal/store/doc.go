// Package store persists enriched metadata records.
//
// Three backends implement Store: SQLite (the default, a single WAL-mode
// database under the data directory), Redis for deployments that share
// records between processes, and an in-memory map used for throwaway runs
// and tests. Records are stored whole as JSON keyed by their primary id.
package store
