// Package gencode builds the GENCODE assembly catalog and reconciles it with
// a peer catalog.
//
// Discovery walks the remote release tree (Gencode_<species>/release_<n>),
// picks each release's primary assembly, and collects annotation links per
// assembly. The reconciler maps every assembly name onto the peer's naming
// scheme and enriches records with the peer accession. Provider ties the
// steps together behind a one-shot initialization state machine and serves
// the read operations used by the CLI.
package gencode
