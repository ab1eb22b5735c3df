package gencode

// Species is one of the fixed species GENCODE publishes releases for.
type Species struct {
	Tag        string
	Name       string
	TaxonomyID int
	// ReleasePrefix is prepended to numeric release identifiers.
	ReleasePrefix string
	// Primary species carry the GRCh37 liftover special case.
	Primary bool
}

var (
	Human = Species{Tag: "human", Name: "Homo sapiens", TaxonomyID: 9606, Primary: true}
	Mouse = Species{Tag: "mouse", Name: "Mus musculus", TaxonomyID: 10090, ReleasePrefix: "M"}
)

// SupportedSpecies returns the species in discovery order.
func SupportedSpecies() []Species {
	return []Species{Human, Mouse}
}

// SpeciesByTag returns the species with the given tag.
func SpeciesByTag(tag string) (Species, bool) {
	for _, sp := range SupportedSpecies() {
		if sp.Tag == tag {
			return sp, true
		}
	}
	return Species{}, false
}

func (s Species) directory() string {
	return "Gencode_" + s.Tag
}
