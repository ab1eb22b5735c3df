// Package ucsc implements the peer catalog against the UCSC Genome Browser.
//
// The genome list comes from the UCSC REST API and is memoized in the cache
// store under the long-lived policy. Sequence links point at the goldenPath
// bigZips directory of each assembly; candidates are probed with HEAD
// requests unless probing is skipped.
package ucsc
