// Package compare reconciles a gene's coordinates under two annotation
// versions into a single verdict and folds verdicts into summary counts.
package compare

import "panelcheck/internal/genes"

// UnknownSymbol is reported when neither version resolved the gene.
const UnknownSymbol = "UNKNOWN"

// Status is the per-gene outcome of a comparison.
type Status string

const (
	StatusRetained Status = "retained"
	StatusChanged  Status = "changed"
	StatusMissing  Status = "missing"
)

// GeneComparison is the verdict for one panel gene.
type GeneComparison struct {
	GeneSymbol        string                 `json:"gene_symbol"`
	Confidence        genes.Confidence       `json:"confidence"`
	SymbolRetained    bool                   `json:"symbol_retained"`
	LocationChanged   bool                   `json:"location_changed"`
	EnsemblIDRetained bool                   `json:"ensembl_id_retained"`
	CurrentVersion    *genes.GenomicLocation `json:"current_version,omitempty"`
	TargetVersion     *genes.GenomicLocation `json:"target_version,omitempty"`
	Status            Status                 `json:"status"`
}

// Summary holds the counts derived from one run's comparisons.
type Summary struct {
	SymbolsRetained  int `json:"symbols_retained"`
	SymbolsChanged   int `json:"symbols_changed"`
	LocationsChanged int `json:"locations_changed"`
	GenesMissing     int `json:"genes_missing"`
}

// Compare builds the verdict for one gene. A nil location means the gene was
// not found under that version. All equality checks are exact.
func Compare(current, target *genes.GenomicLocation, confidence genes.Confidence) GeneComparison {
	switch {
	case current == nil && target == nil:
		// Catalog genes with no symbol are never looked up and land here.
		return GeneComparison{
			GeneSymbol: UnknownSymbol,
			Confidence: confidence,
			Status:     StatusMissing,
		}
	case current == nil:
		return GeneComparison{
			GeneSymbol:    target.GeneSymbol,
			Confidence:    confidence,
			TargetVersion: target,
			Status:        StatusChanged,
		}
	case target == nil:
		return GeneComparison{
			GeneSymbol:     current.GeneSymbol,
			Confidence:     confidence,
			CurrentVersion: current,
			Status:         StatusMissing,
		}
	}

	symbolRetained := current.GeneSymbol == target.GeneSymbol
	locationChanged := !current.SameLocation(*target)

	status := StatusChanged
	if symbolRetained && !locationChanged {
		status = StatusRetained
	}

	return GeneComparison{
		GeneSymbol:        current.GeneSymbol,
		Confidence:        confidence,
		SymbolRetained:    symbolRetained,
		LocationChanged:   locationChanged,
		EnsemblIDRetained: current.EnsemblID == target.EnsemblID,
		CurrentVersion:    current,
		TargetVersion:     target,
		Status:            status,
	}
}

// Summarize folds comparisons into counts. SymbolsChanged only counts genes
// that were still resolvable, so a missing gene is never double counted.
func Summarize(results []GeneComparison) Summary {
	var s Summary
	for _, r := range results {
		if r.SymbolRetained {
			s.SymbolsRetained++
		}
		if !r.SymbolRetained && r.Status != StatusMissing {
			s.SymbolsChanged++
		}
		if r.LocationChanged {
			s.LocationsChanged++
		}
		if r.Status == StatusMissing {
			s.GenesMissing++
		}
	}
	return s
}

// CountByStatus partitions comparisons by status.
func CountByStatus(results []GeneComparison) map[Status]int {
	counts := map[Status]int{
		StatusRetained: 0,
		StatusChanged:  0,
		StatusMissing:  0,
	}
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
