package ensembl

import (
	"errors"

	"panelcheck/internal/genes"
)

// lookupRecord is the subset of a /lookup response the client reads.
// Required fields are pointers so a missing field is distinguishable from a
// zero value.
type lookupRecord struct {
	ID            *string `json:"id"`
	DisplayName   *string `json:"display_name"`
	SeqRegionName *string `json:"seq_region_name"`
	Start         *int64  `json:"start"`
	End           *int64  `json:"end"`
	Strand        *int    `json:"strand"`
	AssemblyName  string  `json:"assembly_name"`
}

func (r lookupRecord) location(defaultSymbol string) (*genes.GenomicLocation, error) {
	switch {
	case r.ID == nil:
		return nil, errors.New("missing id")
	case r.SeqRegionName == nil:
		return nil, errors.New("missing seq_region_name")
	case r.Start == nil:
		return nil, errors.New("missing start")
	case r.End == nil:
		return nil, errors.New("missing end")
	case r.Strand == nil:
		return nil, errors.New("missing strand")
	}

	symbol := defaultSymbol
	if r.DisplayName != nil {
		symbol = *r.DisplayName
	}
	return &genes.GenomicLocation{
		EnsemblID:  *r.ID,
		GeneSymbol: symbol,
		Chromosome: *r.SeqRegionName,
		Start:      *r.Start,
		End:        *r.End,
		Strand:     *r.Strand,
	}, nil
}
