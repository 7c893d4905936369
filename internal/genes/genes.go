// Package genes holds the plain data types shared by the registry clients,
// the comparator and the pipeline.
package genes

// ReferenceAssembly is the only genome build whose coordinates are accepted.
// Records aligned to any other build are treated as absent.
const ReferenceAssembly = "GRCh38"

// Confidence is the panel's three-tier certainty for a gene.
type Confidence string

const (
	Green Confidence = "green"
	Amber Confidence = "amber"
	Red   Confidence = "red"
)

// ConfidenceFromLevel maps a raw catalog confidence code to its tier.
// "3" is green, "2" is amber, anything else (including a missing code) is red.
func ConfidenceFromLevel(level string) Confidence {
	switch level {
	case "3":
		return Green
	case "2":
		return Amber
	default:
		return Red
	}
}

// PanelGene is one gene as listed by the panel catalog.
type PanelGene struct {
	Symbol     string     `json:"symbol"`
	EnsemblID  string     `json:"ensembl_id"`
	Confidence Confidence `json:"confidence"`
}

// GenomicLocation is a gene's coordinates under one annotation version.
type GenomicLocation struct {
	EnsemblID  string `json:"ensembl_id"`
	GeneSymbol string `json:"gene_symbol"`
	Chromosome string `json:"chromosome"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	Strand     int    `json:"strand"`
}

// SameLocation reports whether chromosome, start, end and strand all match.
func (l GenomicLocation) SameLocation(o GenomicLocation) bool {
	return l.Chromosome == o.Chromosome &&
		l.Start == o.Start &&
		l.End == o.End &&
		l.Strand == o.Strand
}
