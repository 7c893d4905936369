package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"panelcheck/internal/compare"
)

// Bounds accepted for a request.
const (
	MinEnsemblVersion = 100
	MaxEnsemblVersion = 120
	DefaultLimit      = 30
	MaxLimit          = 50
)

var (
	// ErrInvalidRequest matches every request validation failure.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUpstreamUnavailable matches a failed panel catalog call.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError names the request field that is out of bounds.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

// Request asks for one window of a panel to be compared between two
// annotation releases.
type Request struct {
	PanelID               string `json:"panel_id"`
	// PanelVersion is informational; the catalog always serves the current
	// version and the response carries the one actually fetched.
	PanelVersion          string `json:"panel_version"`
	CurrentEnsemblVersion int    `json:"current_ensembl_version"`
	TargetEnsemblVersion  int    `json:"target_ensembl_version"`
	Offset                int    `json:"offset"`
	Limit                 int    `json:"limit"`
}

// WithDefaults fills an unset limit.
func (r Request) WithDefaults() Request {
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	return r
}

// Validate reports every out-of-bounds field. The error matches
// ErrInvalidRequest.
func (r Request) Validate() error {
	var errs []error
	if strings.TrimSpace(r.PanelID) == "" {
		errs = append(errs, &ValidationError{Field: "panel_id", Reason: "is required"})
	}
	if err := checkVersion("current_ensembl_version", r.CurrentEnsemblVersion); err != nil {
		errs = append(errs, err)
	}
	if err := checkVersion("target_ensembl_version", r.TargetEnsemblVersion); err != nil {
		errs = append(errs, err)
	}
	if r.Offset < 0 {
		errs = append(errs, &ValidationError{Field: "offset", Reason: fmt.Sprintf("must be >= 0, got %d", r.Offset)})
	}
	if r.Limit < 1 || r.Limit > MaxLimit {
		errs = append(errs, &ValidationError{Field: "limit", Reason: fmt.Sprintf("must be in [1,%d], got %d", MaxLimit, r.Limit)})
	}
	return errors.Join(errs...)
}

func checkVersion(field string, v int) error {
	if v < MinEnsemblVersion || v > MaxEnsemblVersion {
		return &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("must be in [%d,%d], got %d", MinEnsemblVersion, MaxEnsemblVersion, v),
		}
	}
	return nil
}

// Response is the outcome of one completed analysis.
type Response struct {
	PanelID               string                   `json:"panel_id"`
	PanelName             string                   `json:"panel_name"`
	PanelVersion          string                   `json:"panel_version"`
	TotalGenes            int                      `json:"total_genes"`
	GenesAnalyzed         int                      `json:"genes_analyzed"`
	Offset                int                      `json:"offset"`
	HasMore               bool                     `json:"has_more"`
	CurrentEnsemblVersion int                      `json:"current_ensembl_version"`
	TargetEnsemblVersion  int                      `json:"target_ensembl_version"`
	Summary               compare.Summary          `json:"summary"`
	Genes                 []compare.GeneComparison `json:"genes"`
}

// HasMore reports whether genes remain past the window [offset, offset+limit).
// The comparison avoids offset+limit so a huge offset cannot wrap around.
func HasMore(offset, limit, total int) bool {
	return offset < total && limit < total-offset
}
