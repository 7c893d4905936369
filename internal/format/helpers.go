package format

import (
	"fmt"

	"panelcheck/internal/genes"
)

// Locus formats a location as "chr17:43044295-43125483(-)"; nil is "-".
func Locus(loc *genes.GenomicLocation) string {
	if loc == nil {
		return "-"
	}
	strand := "+"
	if loc.Strand < 0 {
		strand = "-"
	}
	return fmt.Sprintf("chr%s:%d-%d(%s)", loc.Chromosome, loc.Start, loc.End, strand)
}

// EnsemblID returns the identifier of loc, or "-" when absent.
func EnsemblID(loc *genes.GenomicLocation) string {
	if loc == nil || loc.EnsemblID == "" {
		return "-"
	}
	return loc.EnsemblID
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
