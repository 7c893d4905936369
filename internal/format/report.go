package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"panelcheck/internal/compare"
	"panelcheck/internal/panelapp"
	"panelcheck/internal/pipeline"
)

const maxNameWidth = 60

// Analysis writes a report of resp: a header, the summary counts and one
// row per compared gene.
func Analysis(w io.Writer, resp *pipeline.Response, m Mode) error {
	if resp == nil {
		return fmt.Errorf("format: nil analysis")
	}
	if m == JSON {
		return writeJSON(w, resp)
	}

	var b strings.Builder
	heading(&b, m, fmt.Sprintf("%s (panel %s, v%s)", resp.PanelName, resp.PanelID, resp.PanelVersion))
	fmt.Fprintf(&b, "Ensembl %d -> %d, genes %d-%d of %d",
		resp.CurrentEnsemblVersion, resp.TargetEnsemblVersion,
		windowStart(resp), windowEnd(resp), resp.TotalGenes)
	if resp.HasMore {
		fmt.Fprintf(&b, " (more from offset %d)", windowEnd(resp))
	}
	b.WriteString("\n\n")

	summary := NewTable(m,
		Column{Title: "Symbols retained", Align: AlignRight},
		Column{Title: "Symbols changed", Align: AlignRight},
		Column{Title: "Locations changed", Align: AlignRight},
		Column{Title: "Genes missing", Align: AlignRight},
	)
	s := resp.Summary
	summary.Row(s.SymbolsRetained, s.SymbolsChanged, s.LocationsChanged, s.GenesMissing)
	b.WriteString(summary.String())
	b.WriteString("\n\n")

	if len(resp.Genes) == 0 {
		b.WriteString("No genes in this window.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	tb := NewTable(m,
		Column{Title: "#", Align: AlignRight},
		Column{Title: "Gene"},
		Column{Title: "Ensembl ID"},
		Column{Title: "Confidence"},
		Column{Title: "Status"},
		Column{Title: "Symbol", Align: AlignCenter},
		Column{Title: "ID", Align: AlignCenter},
		Column{Title: "Current"},
		Column{Title: "Target"},
	)
	for i, g := range resp.Genes {
		loc := g.TargetVersion
		if loc == nil {
			loc = g.CurrentVersion
		}
		tb.Row(resp.Offset+i+1, g.GeneSymbol, EnsemblID(loc), string(g.Confidence), string(g.Status),
			BoolMark(g.SymbolRetained), BoolMark(g.EnsemblIDRetained),
			Locus(g.CurrentVersion), Locus(g.TargetVersion))
	}
	counts := compare.CountByStatus(resp.Genes)
	tb.Footer("", "", "", "", fmt.Sprintf("%d/%d/%d", counts[compare.StatusRetained],
		counts[compare.StatusChanged], counts[compare.StatusMissing]), "", "", "", "")
	b.WriteString(tb.String())
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Panels writes a catalog listing.
func Panels(w io.Writer, panels []panelapp.PanelInfo, m Mode) error {
	if m == JSON {
		if panels == nil {
			panels = []panelapp.PanelInfo{}
		}
		return writeJSON(w, panels)
	}
	if len(panels) == 0 {
		_, err := io.WriteString(w, "No panels found.\n")
		return err
	}
	tb := NewTable(m,
		Column{Title: "ID", Align: AlignRight},
		Column{Title: "Name", MaxWidth: maxNameWidth},
		Column{Title: "Version"},
		Column{Title: "Genes", Align: AlignRight},
		Column{Title: "Signed off", Align: AlignCenter},
	)
	for _, p := range panels {
		tb.Row(p.ID, Truncate(p.Name, maxNameWidth), p.Version, p.GeneCount, BoolMark(p.SignedOff))
	}
	_, err := fmt.Fprintf(w, "%s\n%d panel(s)\n", tb.String(), tb.Len())
	return err
}

func heading(b *strings.Builder, m Mode, title string) {
	if m == Markdown {
		fmt.Fprintf(b, "## %s\n\n", title)
		return
	}
	fmt.Fprintf(b, "%s\n", title)
}

func windowStart(resp *pipeline.Response) int {
	if resp.GenesAnalyzed == 0 {
		return resp.Offset
	}
	return resp.Offset + 1
}

// windowEnd is the last gene position shown, or the offset for an empty window.
func windowEnd(resp *pipeline.Response) int {
	if resp.GenesAnalyzed == 0 {
		return resp.Offset
	}
	return resp.Offset + resp.GenesAnalyzed
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("format: encode json: %w", err)
	}
	return nil
}
