package main

import (
	"github.com/spf13/cobra"

	"panelcheck/internal/format"
)

var searchFlags struct {
	all    bool
	format string
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search PanelApp for panels",
	Long: `List PanelApp panels whose name matches query. Without a query every
panel is listed. Only panels with a signed-off version are shown unless
--all is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.BoolVar(&searchFlags.all, "all", false, "Include panels without a signed-off version")
	f.StringVar(&searchFlags.format, "format", "ascii", "Output format: ascii, markdown, json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	mode, err := format.ParseMode(searchFlags.format)
	if err != nil {
		return err
	}
	var query string
	if len(args) > 0 {
		query = args[0]
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	panels, err := app.Service.SearchPanels(cmd.Context(), query, !searchFlags.all)
	if err != nil {
		return err
	}
	return format.Panels(cmd.OutOrStdout(), panels, mode)
}
