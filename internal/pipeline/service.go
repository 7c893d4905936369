package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"panelcheck/internal/compare"
	"panelcheck/internal/genes"
	"panelcheck/internal/logging"
	"panelcheck/internal/panelapp"
)

// Stage names one node of the task graph, or a terminal state.
type Stage string

const (
	StageAccepted       Stage = "accepted"
	StagePanelFetch     Stage = "panel_fetch"
	StageCurrentResolve Stage = "current_resolve"
	StageTargetResolve  Stage = "target_resolve"
	StageReconcile      Stage = "reconcile"
	StageSummarize      Stage = "summarize"
	StageCompleted      Stage = "completed"
	StageFailed         Stage = "failed"
)

// PanelSource is the panel catalog.
type PanelSource interface {
	Search(ctx context.Context, query string, signedOffOnly bool) ([]panelapp.PanelInfo, error)
	PanelGenes(ctx context.Context, panelID string) (*panelapp.Panel, error)
}

// Resolver looks genes up in one annotation release. A nil result means the
// gene is not available in that release; resolvers never fail the run.
type Resolver interface {
	LookupSymbol(ctx context.Context, symbol string) *genes.GenomicLocation
}

// ResolverFactory builds the resolver for one annotation release.
type ResolverFactory func(version int) (Resolver, error)

// Observer receives per-gene and per-run outcomes.
type Observer interface {
	ObserveGene(status string)
	ObserveRun(state string)
}

// Service is the entry point for panel searches and analyses.
type Service struct {
	panels      PanelSource
	resolvers   ResolverFactory
	maxInFlight int
	observer    Observer
	stageHook   func(Stage)
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMaxInFlight bounds concurrent lookups per resolve branch. The default
// of 1 resolves the window strictly symbol by symbol.
func WithMaxInFlight(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxInFlight = n
		}
	}
}

// WithObserver reports outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithStageHook calls fn on every stage entered. The two resolve stages are
// entered concurrently, so fn must be safe for concurrent use.
func WithStageHook(fn func(Stage)) Option {
	return func(s *Service) { s.stageHook = fn }
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New wires a Service from its collaborators.
func New(panels PanelSource, resolvers ResolverFactory, opts ...Option) (*Service, error) {
	if panels == nil {
		return nil, fmt.Errorf("pipeline: panel source is required")
	}
	if resolvers == nil {
		return nil, fmt.Errorf("pipeline: resolver factory is required")
	}
	s := &Service{
		panels:      panels,
		resolvers:   resolvers,
		maxInFlight: 1,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SearchPanels lists catalog panels matching query.
func (s *Service) SearchPanels(ctx context.Context, query string, signedOffOnly bool) ([]panelapp.PanelInfo, error) {
	panels, err := s.panels.Search(ctx, query, signedOffOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: search panels: %w", ErrUpstreamUnavailable, err)
	}
	return panels, nil
}

// Analyze runs the task graph for req and returns the complete response, or
// an error when the request is invalid or the panel could not be fetched.
func (s *Service) Analyze(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		s.observeRun("rejected")
		return nil, err
	}

	start := time.Now()
	log := s.logger.With("panel_id", req.PanelID,
		"current", req.CurrentEnsemblVersion, "target", req.TargetEnsemblVersion)
	s.enter(log, StageAccepted)

	fail := func(err error) (*Response, error) {
		s.enter(log, StageFailed)
		s.observeRun(string(StageFailed))
		log.WarnContext(ctx, "analysis failed", "error", err)
		return nil, err
	}

	current, err := s.resolvers(req.CurrentEnsemblVersion)
	if err != nil {
		return fail(fmt.Errorf("resolver for release %d: %w", req.CurrentEnsemblVersion, err))
	}
	target, err := s.resolvers(req.TargetEnsemblVersion)
	if err != nil {
		return fail(fmt.Errorf("resolver for release %d: %w", req.TargetEnsemblVersion, err))
	}

	s.enter(log, StagePanelFetch)
	panel, err := s.panels.PanelGenes(ctx, req.PanelID)
	if err != nil {
		return fail(fmt.Errorf("%w: fetch panel %s: %w", ErrUpstreamUnavailable, req.PanelID, err))
	}
	window := Window(panel.Genes, req.Offset, req.Limit)

	var currentLocs, targetLocs []*genes.GenomicLocation
	var g errgroup.Group
	g.Go(func() error {
		s.enter(log, StageCurrentResolve)
		currentLocs = s.resolve(ctx, current, window)
		return nil
	})
	g.Go(func() error {
		s.enter(log, StageTargetResolve)
		targetLocs = s.resolve(ctx, target, window)
		return nil
	})
	_ = g.Wait() // lookups absorb their own failures
	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("resolve genes: %w", err))
	}

	s.enter(log, StageReconcile)
	comparisons := make([]compare.GeneComparison, 0, len(window))
	for i, gene := range window {
		c := compare.Compare(currentLocs[i], targetLocs[i], gene.Confidence)
		comparisons = append(comparisons, c)
		s.observeGene(string(c.Status))
	}

	s.enter(log, StageSummarize)
	summary := compare.Summarize(comparisons)

	resp := &Response{
		PanelID:               req.PanelID,
		PanelName:             panel.Name,
		PanelVersion:          panel.Version,
		TotalGenes:            len(panel.Genes),
		GenesAnalyzed:         len(comparisons),
		Offset:                req.Offset,
		HasMore:               HasMore(req.Offset, req.Limit, len(panel.Genes)),
		CurrentEnsemblVersion: req.CurrentEnsemblVersion,
		TargetEnsemblVersion:  req.TargetEnsemblVersion,
		Summary:               summary,
		Genes:                 comparisons,
	}

	s.enter(log, StageCompleted)
	s.observeRun(string(StageCompleted))
	log.InfoContext(ctx, "analysis completed",
		"panel", panel.Name,
		"total_genes", resp.TotalGenes,
		"analyzed", resp.GenesAnalyzed,
		"missing", summary.GenesMissing,
		"locations_changed", summary.LocationsChanged,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// resolve looks up every window symbol in one release. Results are indexed
// like window, whatever order the lookups finish in.
func (s *Service) resolve(ctx context.Context, r Resolver, window []genes.PanelGene) []*genes.GenomicLocation {
	out := make([]*genes.GenomicLocation, len(window))
	var g errgroup.Group
	g.SetLimit(s.maxInFlight)
	for i, gene := range window {
		if gene.Symbol == "" {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out[i] = r.LookupSymbol(ctx, gene.Symbol)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Window returns genes[offset : offset+limit], clipped to the list.
func Window(all []genes.PanelGene, offset, limit int) []genes.PanelGene {
	if offset >= len(all) || limit <= 0 {
		return nil
	}
	end := len(all)
	if limit < end-offset {
		end = offset + limit
	}
	return all[offset:end]
}

func (s *Service) enter(log *slog.Logger, st Stage) {
	log.Debug("stage", "stage", string(st))
	if s.stageHook != nil {
		s.stageHook(st)
	}
}

func (s *Service) observeGene(status string) {
	if s.observer != nil {
		s.observer.ObserveGene(status)
	}
}

func (s *Service) observeRun(state string) {
	if s.observer != nil {
		s.observer.ObserveRun(state)
	}
}
