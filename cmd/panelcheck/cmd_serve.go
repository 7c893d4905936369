package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"panelcheck/internal/logging"
	mcpserver "panelcheck/internal/mcp"
)

var serveFlags struct {
	metricsAddr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the search_panels and
analyze_panel tools. Rate limits are shared by every call the server handles.

With --metrics-addr (or metrics.addr in the config) Prometheus metrics are
served on http://<addr>/metrics.

The server monitors for parent process death and exits when its client goes
away without closing stdin.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.metricsAddr, "metrics-addr", "", "Listen address for /metrics (overrides config; empty disables)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	logger := logging.New("serve")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	addr := app.Config.Metrics.Addr
	if serveFlags.metricsAddr != "" {
		addr = serveFlags.metricsAddr
	}
	if addr != "" {
		stop := serveMetrics(ctx, addr, app.MetricsHandler(), cancel)
		defer stop()
	}

	srv := mcpserver.NewServer(app.Service, version)
	mcpserver.WatchParent(ctx, cancel, logger)

	logger.Info("starting panelcheck MCP server over stdio (parent watchdog active)", "metrics_addr", addr)
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

// serveMetrics runs the metrics endpoint until the returned stop function
// is called. A listener failure cancels the server.
func serveMetrics(ctx context.Context, addr string, h http.Handler, cancel context.CancelFunc) (stop func()) {
	logger := logging.New("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", "error", err)
			cancel()
		}
	}()

	return func() {
		shutdownCtx, done := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer done()
		_ = hs.Shutdown(shutdownCtx)
	}
}
