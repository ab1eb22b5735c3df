package gencode

import (
	"fmt"
	"maps"

	"gencatalog/internal/peer"
)

// historicalPeerNames covers legacy assemblies whose peer names do not follow
// the prefix plus digits rule.
var historicalPeerNames = map[string]string{
	"GRCh37": "hg19",
	"GRCm38": "mm10",
	"GRCm37": "mm9",
}

// PrefixFunc returns the peer naming prefix for a species label.
type PrefixFunc func(species string) string

// PeerPrefix is the UCSC prefix rule: hg for human, mm for everything else.
// It only holds for the two supported species.
func PeerPrefix(species string) string {
	if species == Human.Name {
		return "hg"
	}
	return "mm"
}

// NameMapping maps GENCODE assembly names to peer assembly names. It is
// immutable once built.
type NameMapping struct {
	names map[string]string
}

// PeerName returns the peer name for a GENCODE assembly.
func (m NameMapping) PeerName(name string) (string, bool) {
	peerName, ok := m.names[name]
	return peerName, ok
}

// Len returns the number of mapped names.
func (m NameMapping) Len() int {
	return len(m.names)
}

// Entries returns a copy of the mapping.
func (m NameMapping) Entries() map[string]string {
	return maps.Clone(m.names)
}

// BuildMapping seeds the historical overrides and derives a peer name for
// every other catalog assembly. A nil prefix uses PeerPrefix.
func BuildMapping(c Catalog, prefix PrefixFunc) NameMapping {
	if prefix == nil {
		prefix = PeerPrefix
	}
	names := maps.Clone(historicalPeerNames)
	for name, record := range c {
		if _, ok := names[name]; ok {
			continue
		}
		names[name] = prefix(record.Species) + extractDigits(name)
	}
	return NameMapping{names: names}
}

// PeerLookup resolves a peer genome by name.
type PeerLookup func(name string) (peer.Genome, bool)

// OtherInfo composes the provenance description for an enriched record.
func OtherInfo(peerName string) string {
	return fmt.Sprintf("GENCODE annotation + UCSC %s genome", peerName)
}

// Enrich writes the peer accession and provenance description into every
// record. Every record is validated before any is written, so a failure
// leaves the catalog unchanged. Failures wrap ErrCatalogInvariant.
func Enrich(c Catalog, m NameMapping, lookup PeerLookup) error {
	if lookup == nil {
		return fmt.Errorf("%w: no peer lookup", ErrCatalogInvariant)
	}
	type update struct {
		record    *AssemblyRecord
		accession string
		otherInfo string
	}
	updates := make([]update, 0, len(c))
	for _, name := range c.Names() {
		peerName, ok := m.PeerName(name)
		if !ok {
			return fmt.Errorf("%w: assembly %s has no peer mapping", ErrCatalogInvariant, name)
		}
		genome, ok := lookup(peerName)
		if !ok {
			return fmt.Errorf("%w: assembly %s maps to %s, which the peer catalog lacks", ErrCatalogInvariant, name, peerName)
		}
		updates = append(updates, update{
			record:    c[name],
			accession: genome.Accession,
			otherInfo: OtherInfo(peerName),
		})
	}
	for _, u := range updates {
		u.record.Accession = u.accession
		u.record.OtherInfo = u.otherInfo
	}
	return nil
}
