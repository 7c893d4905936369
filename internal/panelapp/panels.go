package panelapp

import (
	"context"
	"fmt"
	"net/url"

	"panelcheck/internal/genes"
)

// maxSearchPages bounds how many result pages one search follows.
const maxSearchPages = 100

// Search lists panels whose name matches query (all panels when query is
// empty), following the catalog's pagination to the last page. With
// signedOffOnly, panels without a signed-off version are dropped.
func (c *Client) Search(ctx context.Context, query string, signedOffOnly bool) ([]PanelInfo, error) {
	params := url.Values{}
	if query != "" {
		params.Set("search", query)
	}
	next := c.baseURL + "/panels/"
	if len(params) > 0 {
		next += "?" + params.Encode()
	}

	panels := []PanelInfo{}
	seen := map[string]bool{}
	for page := 1; next != "" && !seen[next]; page++ {
		if page > maxSearchPages {
			return nil, fmt.Errorf("search panels: more than %d result pages", maxSearchPages)
		}
		seen[next] = true

		var res searchPage
		if err := c.getJSON(ctx, next, "search panels", &res); err != nil {
			return nil, err
		}
		for _, rec := range res.Results {
			if signedOffOnly && !bool(rec.VersionSignedOff) {
				continue
			}
			panels = append(panels, PanelInfo{
				ID:        string(rec.ID),
				Name:      rec.Name,
				Version:   string(rec.Version),
				GeneCount: rec.NumberOfGenes,
				SignedOff: bool(rec.VersionSignedOff),
			})
		}
		next = res.Next
	}
	return panels, nil
}

// PanelGenes returns the named panel's full gene list in catalog order.
func (c *Client) PanelGenes(ctx context.Context, panelID string) (*Panel, error) {
	if panelID == "" {
		return nil, fmt.Errorf("get panel genes: panel id is required")
	}
	u := fmt.Sprintf("%s/panels/%s/", c.baseURL, url.PathEscape(panelID))

	var detail panelDetail
	if err := c.getJSON(ctx, u, "get panel genes", &detail); err != nil {
		return nil, err
	}

	panel := &Panel{
		Name:    detail.Name,
		Version: string(detail.Version),
		Genes:   make([]genes.PanelGene, 0, len(detail.Genes)),
	}
	for _, g := range detail.Genes {
		panel.Genes = append(panel.Genes, genes.PanelGene{
			Symbol:     g.GeneData.GeneSymbol,
			EnsemblID:  g.GeneData.EnsemblID,
			Confidence: genes.ConfidenceFromLevel(string(g.ConfidenceLevel)),
		})
	}
	return panel, nil
}
