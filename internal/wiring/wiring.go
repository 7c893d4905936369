// Package wiring assembles the process: one rate limiter per upstream
// registry, the registry clients, metrics and the analysis pipeline.
package wiring

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"panelcheck/internal/config"
	"panelcheck/internal/ensembl"
	"panelcheck/internal/logging"
	"panelcheck/internal/metrics"
	"panelcheck/internal/panelapp"
	"panelcheck/internal/pipeline"
	"panelcheck/internal/ratelimit"
)

// Limiter names as they appear in logs and metrics.
const (
	PanelAppLimiter = "panelapp"
	EnsemblLimiter  = "ensembl"
)

// App holds the long-lived components. The limiters are shared by every
// analysis the process runs.
type App struct {
	Config   config.Config
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Panels   *panelapp.Client
	Service  *pipeline.Service

	PanelLimiter   *ratelimit.Window
	EnsemblLimiter *ratelimit.Window

	httpClient  *http.Client
	limiterOpts []ratelimit.Option
}

// Option customizes Build.
type Option func(*App)

// WithHTTPClient routes every upstream request through c.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// WithLimiterOptions applies opts to both limiters.
func WithLimiterOptions(opts ...ratelimit.Option) Option {
	return func(a *App) { a.limiterOpts = append(a.limiterOpts, opts...) }
}

// Build validates cfg and wires the application.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	a := &App{Config: cfg, Registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(a)
	}
	a.Metrics = metrics.New(a.Registry)

	var err error
	limiterOpts := append([]ratelimit.Option{ratelimit.WithObserver(a.Metrics)}, a.limiterOpts...)
	a.PanelLimiter, err = ratelimit.New(PanelAppLimiter,
		cfg.PanelApp.RateLimit.MaxCalls, cfg.PanelApp.RateLimit.Window.Std(), limiterOpts...)
	if err != nil {
		return nil, err
	}
	a.EnsemblLimiter, err = ratelimit.New(EnsemblLimiter,
		cfg.Ensembl.RateLimit.MaxCalls, cfg.Ensembl.RateLimit.Window.Std(), limiterOpts...)
	if err != nil {
		return nil, err
	}

	panelOpts := []panelapp.Option{
		panelapp.WithLimiter(a.PanelLimiter),
		panelapp.WithRecorder(a.Metrics),
		panelapp.WithLogger(logging.New("panelapp")),
		panelapp.WithTimeout(cfg.PanelApp.Timeout.Std()),
		panelapp.WithUserAgent(cfg.PanelApp.UserAgent),
	}
	if a.httpClient != nil {
		panelOpts = append(panelOpts, panelapp.WithHTTPClient(a.httpClient))
	}
	a.Panels, err = panelapp.New(cfg.PanelApp.BaseURL, panelOpts...)
	if err != nil {
		return nil, fmt.Errorf("panelapp client: %w", err)
	}

	a.Service, err = pipeline.New(a.Panels, a.resolverFactory(),
		pipeline.WithMaxInFlight(cfg.Pipeline.MaxInFlight),
		pipeline.WithObserver(a.Metrics),
		pipeline.WithLogger(logging.New("pipeline")),
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// resolverFactory builds one annotation client per requested release. All
// of them share the single annotation limiter.
func (a *App) resolverFactory() pipeline.ResolverFactory {
	cfg := a.Config.Ensembl
	logger := logging.New("ensembl")
	return func(version int) (pipeline.Resolver, error) {
		opts := []ensembl.Option{
			ensembl.WithEndpoints(cfg.URLTemplate, cfg.LatestURL),
			ensembl.WithOrganism(cfg.Organism),
			ensembl.WithAssembly(cfg.Assembly),
			ensembl.WithTimeout(cfg.Timeout.Std()),
			ensembl.WithLimiter(a.EnsemblLimiter),
			ensembl.WithRecorder(a.Metrics),
			ensembl.WithLogger(logger),
		}
		if a.httpClient != nil {
			opts = append(opts, ensembl.WithHTTPClient(a.httpClient))
		}
		c, err := ensembl.New(version, opts...)
		if err != nil {
			return nil, fmt.Errorf("ensembl client: %w", err)
		}
		return c, nil
	}
}

// MetricsHandler serves the App's registry.
func (a *App) MetricsHandler() http.Handler {
	return metrics.Handler(a.Registry)
}
