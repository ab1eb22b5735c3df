package gencode

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Search returns the enriched genomes matching term. A numeric term matches
// taxonomy ids exactly; any other term matches name, accession, species or
// description case-insensitively.
func (p *Provider) Search(term string) ([]GenomeInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.require(StateEnriched); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	match := textMatcher(term)
	if taxID, err := strconv.Atoi(term); err == nil {
		match = func(record *AssemblyRecord) bool {
			return record.TaxonomyID == taxID
		}
	}

	var results []GenomeInfo
	for _, name := range p.catalog.Names() {
		record := p.catalog[name]
		if match(record) {
			results = append(results, infoFor(record))
		}
	}
	return results, nil
}

func textMatcher(term string) func(*AssemblyRecord) bool {
	fold := cases.Fold()
	needle := fold.String(term)
	return func(record *AssemblyRecord) bool {
		for _, field := range []string{record.Name, record.Accession, record.Species, record.OtherInfo} {
			if strings.Contains(fold.String(field), needle) {
				return true
			}
		}
		return false
	}
}
