package gencode

import (
	"slices"
	"sort"
)

// AssemblyRecord is the catalog entry for one assembly. Accession and
// OtherInfo stay empty until enrichment.
type AssemblyRecord struct {
	Name            string   `json:"name"`
	TaxonomyID      int      `json:"taxonomy_id"`
	Species         string   `json:"species"`
	AnnotationLinks []string `json:"annotations"`
	Accession       string   `json:"assembly_accession"`
	OtherInfo       string   `json:"other_info"`
}

func (r *AssemblyRecord) clone() *AssemblyRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.AnnotationLinks = slices.Clone(r.AnnotationLinks)
	return &out
}

// Catalog maps assembly names to their records.
type Catalog map[string]*AssemblyRecord

// Names returns the assembly names in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	if c == nil {
		return nil
	}
	out := make(Catalog, len(c))
	for name, record := range c {
		out[name] = record.clone()
	}
	return out
}
