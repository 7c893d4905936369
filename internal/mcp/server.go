// Package mcp exposes panel search and panel analysis as Model Context
// Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"panelcheck/internal/logging"
	"panelcheck/internal/panelapp"
	"panelcheck/internal/pipeline"
)

// Analyzer is the pipeline surface the tools call.
type Analyzer interface {
	SearchPanels(ctx context.Context, query string, signedOffOnly bool) ([]panelapp.PanelInfo, error)
	Analyze(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// Server wraps the MCP SDK server.
type Server struct {
	MCPServer *sdkmcp.Server

	analyzer Analyzer
	logger   *slog.Logger
}

// NewServer creates an MCP server whose tools are backed by a.
func NewServer(a Analyzer, version string) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		analyzer: a,
		logger:   logging.New("mcp"),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "panelcheck", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "search_panels",
		Description: "Search the PanelApp catalog. Returns signed-off panels unless include_unsigned is set.",
	}, s.handleSearchPanels)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name: "analyze_panel",
		Description: "Compare a window of a panel's genes between two Ensembl releases (100-120). " +
			"Returns per-gene retained/changed/missing verdicts, summary counts and has_more for paging.",
	}, s.handleAnalyzePanel)
}

// --- Tool input/output types ---

type searchPanelsInput struct {
	Query           string `json:"query,omitempty" jsonschema:"free-text panel name filter; empty lists every panel"`
	IncludeUnsigned bool   `json:"include_unsigned,omitempty" jsonschema:"also return panels without a signed-off version"`
}

type searchPanelsOutput struct {
	Panels []panelapp.PanelInfo `json:"panels"`
	Total  int                  `json:"total"`
}

type analyzePanelInput struct {
	PanelID               string `json:"panel_id" jsonschema:"PanelApp panel identifier"`
	PanelVersion          string `json:"panel_version,omitempty" jsonschema:"panel version label, informational"`
	CurrentEnsemblVersion int    `json:"current_ensembl_version" jsonschema:"Ensembl release the panel is annotated against (100-120)"`
	TargetEnsemblVersion  int    `json:"target_ensembl_version" jsonschema:"Ensembl release to compare with (100-120)"`
	Offset                int    `json:"offset,omitempty" jsonschema:"index of the first gene to analyze (default 0)"`
	Limit                 int    `json:"limit,omitempty" jsonschema:"number of genes to analyze, 1-50 (default 30)"`
}

// --- Tool handlers ---

func (s *Server) handleSearchPanels(ctx context.Context, _ *sdkmcp.CallToolRequest, input searchPanelsInput) (*sdkmcp.CallToolResult, searchPanelsOutput, error) {
	panels, err := s.analyzer.SearchPanels(ctx, input.Query, !input.IncludeUnsigned)
	if err != nil {
		s.logger.WarnContext(ctx, "search_panels failed", "query", input.Query, "error", err)
		return nil, searchPanelsOutput{}, fmt.Errorf("search panels: %w", err)
	}
	if panels == nil {
		panels = []panelapp.PanelInfo{}
	}
	return nil, searchPanelsOutput{Panels: panels, Total: len(panels)}, nil
}

func (s *Server) handleAnalyzePanel(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzePanelInput) (*sdkmcp.CallToolResult, pipeline.Response, error) {
	req := pipeline.Request{
		PanelID:               input.PanelID,
		PanelVersion:          input.PanelVersion,
		CurrentEnsemblVersion: input.CurrentEnsemblVersion,
		TargetEnsemblVersion:  input.TargetEnsemblVersion,
		Offset:                input.Offset,
		Limit:                 input.Limit,
	}.WithDefaults()

	resp, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "analyze_panel failed", "panel_id", input.PanelID, "error", err)
		return nil, pipeline.Response{}, fmt.Errorf("analyze panel %s: %w", input.PanelID, err)
	}
	return nil, *resp, nil
}
