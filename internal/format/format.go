// Package format renders panel listings and analysis reports as terminal
// tables, Markdown or JSON.
package format

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
	JSON                 // Indented JSON document
)

// ParseMode maps a --format value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascii", "table":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	}
	return ASCII, fmt.Errorf("unknown format %q (want ascii, markdown or json)", s)
}

func (m Mode) String() string {
	switch m {
	case Markdown:
		return "markdown"
	case JSON:
		return "json"
	default:
		return "ascii"
	}
}

// Align is the horizontal alignment of a column.
type Align int

const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Column describes one table column.
type Column struct {
	Title    string
	Align    Align
	MaxWidth int // 0 = unlimited
}

// Table wraps a go-pretty writer configured once for a Mode.
type Table struct {
	writer table.Writer
	mode   Mode
}

// NewTable returns a table with the given columns.
func NewTable(m Mode, cols ...Column) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}

	header := make(table.Row, len(cols))
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		header[i] = c.Title
		if c.Align != AlignDefault || c.MaxWidth > 0 {
			cfgs = append(cfgs, table.ColumnConfig{
				Number:   i + 1,
				Align:    toTextAlign(c.Align),
				WidthMax: c.MaxWidth,
			})
		}
	}
	if len(cols) > 0 {
		w.AppendHeader(header)
	}
	if len(cfgs) > 0 {
		w.SetColumnConfigs(cfgs)
	}
	return &Table{writer: w, mode: m}
}

// Row appends a data row.
func (t *Table) Row(vals ...any) {
	t.writer.AppendRow(table.Row(vals))
}

// Footer appends a footer row.
func (t *Table) Footer(vals ...any) {
	t.writer.AppendFooter(table.Row(vals))
}

// Len returns the number of data rows.
func (t *Table) Len() int { return t.writer.Length() }

// String renders the table.
func (t *Table) String() string {
	if t.mode == Markdown {
		return t.writer.RenderMarkdown()
	}
	return t.writer.Render()
}

func toTextAlign(a Align) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignRight:
		return text.AlignRight
	case AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignDefault
	}
}
