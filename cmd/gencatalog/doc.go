// Package main hosts the gencatalog CLI entrypoint and command graph.
//
// Commands resolve configuration once, open the memo cache, and call the
// GENCODE provider facade; the catalog logic itself lives in internal
// packages. Human output uses tables and status lines, and every listing
// command accepts --json for scripting.
package main
