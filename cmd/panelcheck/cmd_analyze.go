package main

import (
	"github.com/spf13/cobra"

	"panelcheck/internal/format"
	"panelcheck/internal/pipeline"
)

var analyzeFlags struct {
	current      int
	target       int
	panelVersion string
	offset       int
	limit        int
	format       string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <panel-id>",
	Short: "Compare a panel's genes between two Ensembl releases",
	Long: `Fetch the panel from PanelApp, resolve a window of its genes in both
Ensembl releases and report, per gene, whether it was retained, changed or
went missing.

Usage:
  panelcheck analyze 635 --current 105 --target 112
  panelcheck analyze 635 --current 105 --target 112 --offset 30 --limit 30
  panelcheck analyze 635 --current 105 --target 112 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.IntVar(&analyzeFlags.current, "current", 0, "Ensembl release the panel is annotated against (required)")
	f.IntVar(&analyzeFlags.target, "target", 0, "Ensembl release to compare with (required)")
	f.StringVar(&analyzeFlags.panelVersion, "panel-version", "", "Panel version label")
	f.IntVar(&analyzeFlags.offset, "offset", 0, "Index of the first gene to analyze")
	f.IntVar(&analyzeFlags.limit, "limit", pipeline.DefaultLimit, "Number of genes to analyze (max 50)")
	f.StringVar(&analyzeFlags.format, "format", "ascii", "Output format: ascii, markdown, json")

	_ = analyzeCmd.MarkFlagRequired("current")
	_ = analyzeCmd.MarkFlagRequired("target")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	mode, err := format.ParseMode(analyzeFlags.format)
	if err != nil {
		return err
	}
	req := pipeline.Request{
		PanelID:               args[0],
		PanelVersion:          analyzeFlags.panelVersion,
		CurrentEnsemblVersion: analyzeFlags.current,
		TargetEnsemblVersion:  analyzeFlags.target,
		Offset:                analyzeFlags.offset,
		Limit:                 analyzeFlags.limit,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	resp, err := app.Service.Analyze(cmd.Context(), req)
	if err != nil {
		return err
	}
	return format.Analysis(cmd.OutOrStdout(), resp, mode)
}
