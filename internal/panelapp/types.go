package panelapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"panelcheck/internal/genes"
)

// PanelInfo is the summary of one panel as listed by a search.
type PanelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	GeneCount int    `json:"gene_count"`
	SignedOff bool   `json:"signed_off"`
}

// Panel is a panel's full gene list.
type Panel struct {
	Name    string            `json:"panel_name"`
	Version string            `json:"version"`
	Genes   []genes.PanelGene `json:"genes"`
}

// --- catalog wire types ---

// looseString accepts a JSON string or number and keeps its text form.
// The catalog serializes ids, versions and confidence levels inconsistently.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("unmarshal string: %w", err)
		}
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("unmarshal string or number: %w", err)
	}
	*s = looseString(num.String())
	return nil
}

// presence is true when the field holds anything other than null, false,
// zero or an empty string. version_signed_off carries a date or a version
// object when set and null otherwise.
type presence bool

func (p *presence) UnmarshalJSON(data []byte) error {
	switch v := strings.TrimSpace(string(data)); v {
	case "", "null", "false", "0", `""`:
		*p = false
	default:
		*p = true
	}
	return nil
}

type searchPage struct {
	Count   int           `json:"count"`
	Next    string        `json:"next"`
	Results []panelRecord `json:"results"`
}

type panelRecord struct {
	ID               looseString `json:"id"`
	Name             string      `json:"name"`
	Version          looseString `json:"version"`
	NumberOfGenes    int         `json:"number_of_genes"`
	VersionSignedOff presence    `json:"version_signed_off"`
}

type panelDetail struct {
	Name    string       `json:"name"`
	Version looseString  `json:"version"`
	Genes   []geneRecord `json:"genes"`
}

type geneRecord struct {
	ConfidenceLevel looseString `json:"confidence_level"`
	GeneData        struct {
		GeneSymbol string `json:"gene_symbol"`
		EnsemblID  string `json:"ensembl_id"`
	} `json:"gene_data"`
}

// errorBody is the catalog's error shape.
type errorBody struct {
	Detail string `json:"detail"`
}
