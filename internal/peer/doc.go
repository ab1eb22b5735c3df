// Package peer defines the contract for a peer genome catalog: the provider
// whose assembly names, accessions and sequence downloads the GENCODE catalog
// is reconciled against.
package peer
