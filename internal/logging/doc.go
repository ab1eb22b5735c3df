// Package logging assembles structured slog loggers and formatting helpers used
// across gencatalog.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes typed attribute helpers and standard field keys so
// discovery runs, cache lookups, and peer requests all emit the same shape.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
