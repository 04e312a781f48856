// Package engine assembles the enrichment runtime from configuration: the
// shared rate limiter, the enabled metadata sources, the title matchers, the
// image validator, the record store, and the orchestrator that drives them.
// It also hosts Serve, the long-running mode that feeds discovery events from
// a producer stream into the intake queue.
package engine
