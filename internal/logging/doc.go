// Package logging assembles structured slog loggers and formatting helpers used
// across clipgen.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with batch IDs, stage names, and clip IDs without threading them
// through every call. A no-op logger is provided for tests and for wiring code
// that cannot fail.
package logging
