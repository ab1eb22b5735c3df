// Package preflight provides readiness checks for the remote providers and
// local directories gencatalog depends on.
//
// The CLI "gencatalog status" command runs RunAll to display provider and
// filesystem health. Individual checks are exported so commands can verify
// a single dependency before doing expensive work.
package preflight
