package peer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrGenomeNotFound is returned when a peer catalog has no entry for a name.
var ErrGenomeNotFound = errors.New("genome not found in peer catalog")

// Genome is one peer catalog entry.
type Genome struct {
	Name        string `json:"name"`
	Accession   string `json:"accession"`
	TaxonomyID  int    `json:"taxonomy_id"`
	Species     string `json:"species"`
	Description string `json:"description"`
}

// Mask selects how repeats are represented in a downloaded genome.
type Mask string

const (
	MaskSoft Mask = "soft"
	MaskHard Mask = "hard"
	MaskNone Mask = "none"
)

// ParseMask normalizes a user supplied mask; empty means soft.
func ParseMask(value string) (Mask, error) {
	switch Mask(strings.ToLower(strings.TrimSpace(value))) {
	case "", MaskSoft:
		return MaskSoft, nil
	case MaskHard:
		return MaskHard, nil
	case MaskNone:
		return MaskNone, nil
	default:
		return "", fmt.Errorf("unsupported mask %q (want soft, hard or none)", value)
	}
}

// LinkOptions tunes download link resolution.
type LinkOptions struct {
	// SkipProbe returns the first candidate link without checking it exists.
	SkipProbe bool
}

// DownloadRequest describes where a genome download lands.
type DownloadRequest struct {
	GenomesDir string
	LocalName  string
	Mask       Mask
}

// Provider loads a peer catalog.
type Provider interface {
	Name() string
	LoadCatalog(ctx context.Context) (Catalog, error)
}

// Catalog is a loaded peer catalog.
type Catalog interface {
	Lookup(name string) (Genome, bool)
	DownloadLink(ctx context.Context, name string, mask Mask, opts LinkOptions) (string, error)
	DownloadGenome(ctx context.Context, name string, req DownloadRequest) (string, error)
}
