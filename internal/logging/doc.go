// Package logging assembles structured slog loggers and formatting helpers used
// across marquee.
//
// It owns the console and JSON handlers, centralizes level parsing, and
// mirrors output into a size-rotated JSON file when a log directory is
// configured. Context helpers tag lines with the record being enriched, the
// source involved, and a correlation ID. A no-op logger is provided for tests
// and for components constructed without one.
package logging
