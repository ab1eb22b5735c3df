package testsupport

import "gencatalog/internal/peer"

// GencodeTree returns a release tree shaped like the GENCODE FTP site:
// human releases 44 and 43 on GRCh38 (44 carrying the GRCh37 liftover),
// mouse releases M33 and M32 on GRCm39, plus legacy and stray entries.
func GencodeTree() *Tree {
	return NewTree().
		Set("", "Gencode_human", "Gencode_mouse", "README").
		Set("Gencode_human", "release_19", "release_21", "release_43", "release_44", "latest_release", "_README.TXT").
		Set("Gencode_human/release_44",
			"GRCh38.primary_assembly.genome.fa.gz",
			"gencode.v44.annotation.gtf.gz",
			"GRCh37_mapping").
		Set("Gencode_human/release_43",
			"GRCh38.primary_assembly.genome.fa.gz",
			"gencode.v43.annotation.gtf.gz",
			"GRCh37_mapping").
		Set("Gencode_mouse", "release_M21", "release_M32", "release_M33", "latest_release").
		Set("Gencode_mouse/release_M33",
			"/pub/databases/gencode/Gencode_mouse/release_M33/GRCm39.primary_assembly.genome.fa.gz",
			"/pub/databases/gencode/Gencode_mouse/release_M33/gencode.vM33.annotation.gtf.gz").
		Set("Gencode_mouse/release_M32",
			"GRCm39.primary_assembly.genome.fa.gz",
			"gencode.vM32.annotation.gtf.gz")
}

// UCSCGenomes returns the peer genomes matching GencodeTree.
func UCSCGenomes() []peer.Genome {
	return []peer.Genome{
		{Name: "hg38", Accession: "GCA_000001405.15", TaxonomyID: 9606, Species: "Homo sapiens", Description: "Dec. 2013 (GRCh38/hg38)"},
		{Name: "hg19", Accession: "GCA_000001405.1", TaxonomyID: 9606, Species: "Homo sapiens", Description: "Feb. 2009 (GRCh37/hg19)"},
		{Name: "mm39", Accession: "GCA_000001635.9", TaxonomyID: 10090, Species: "Mus musculus", Description: "Jun. 2020 (GRCm39/mm39)"},
		{Name: "mm10", Accession: "GCA_000001635.2", TaxonomyID: 10090, Species: "Mus musculus", Description: "Dec. 2011 (GRCm38/mm10)"},
	}
}
