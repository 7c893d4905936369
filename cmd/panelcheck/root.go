// panelcheck compares the genes of a PanelApp panel between two Ensembl
// releases.
//
// Usage:
//
//	panelcheck search [query] [--all]
//	panelcheck analyze <panel-id> --current N --target M [--offset O] [--limit L] [--format ascii|markdown|json]
//	panelcheck serve [--metrics-addr :9090]
//	panelcheck version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

var rootCmd = &cobra.Command{
	Use:   "panelcheck",
	Short: "Check gene panels against Ensembl release changes",
	Long: `panelcheck fetches a gene panel from PanelApp and resolves every gene
against two Ensembl releases, reporting whether each gene's symbol, stable
identifier and coordinates were retained, changed, or lost.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: setup,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "Path to config file (YAML/JSON)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json (overrides config)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
