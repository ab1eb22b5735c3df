// Package config loads, normalizes, and validates gencatalog configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GENCATALOG_BASE_URL and XDG_CACHE_HOME. The Config type centralizes the
// remote endpoints, cache location and expiry policies, and logging knobs so
// the CLI and the provider facade receive the same sanitized values.
package config
