// Package ensembl resolves gene coordinates against one release of the
// Ensembl REST service.
//
// A lookup never fails the caller: a 404, a record on a non-reference
// assembly and any transport or decode failure all come back as "not found"
// (nil). Failures other than absence are logged.
package ensembl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"panelcheck/internal/genes"
	"panelcheck/internal/logging"
)

const (
	// DefaultURLTemplate addresses an archived release; %d is the release number.
	DefaultURLTemplate = "https://e%d.rest.ensembl.org"
	// DefaultLatestURL serves the current release.
	DefaultLatestURL = "https://rest.ensembl.org"
	// DefaultOrganism is the species segment of symbol lookups.
	DefaultOrganism = "homo_sapiens"
)

const serviceName = "ensembl"

// errNotFound marks an upstream 404.
var errNotFound = errors.New("not found")

// Limiter gates outgoing requests.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Recorder counts requests by operation and outcome.
type Recorder interface {
	ObserveRequest(service, operation, outcome string)
}

// Client resolves genes against a single release.
type Client struct {
	version    int
	baseURL    string
	organism   string
	assembly   string
	httpClient *http.Client
	limiter    Limiter
	recorder   Recorder
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	urlTemplate string
	latestURL   string
	baseURL     string
	organism    string
	assembly    string
	httpClient  *http.Client
	timeout     time.Duration
	limiter     Limiter
	recorder    Recorder
	logger      *slog.Logger
}

// New returns a client for the given release. Release 0 means the latest
// release.
func New(version int, opts ...Option) (*Client, error) {
	if version < 0 {
		return nil, fmt.Errorf("ensembl: invalid release %d", version)
	}
	cfg := &clientConfig{
		urlTemplate: DefaultURLTemplate,
		latestURL:   DefaultLatestURL,
		organism:    DefaultOrganism,
		assembly:    genes.ReferenceAssembly,
		timeout:     10 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	baseURL := cfg.baseURL
	switch {
	case baseURL != "":
	case version == 0:
		baseURL = cfg.latestURL
	default:
		if !strings.Contains(cfg.urlTemplate, "%d") {
			return nil, fmt.Errorf("ensembl: url template %q has no %%d release placeholder", cfg.urlTemplate)
		}
		baseURL = fmt.Sprintf(cfg.urlTemplate, version)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("ensembl: base URL is required")
	}

	httpClient := &http.Client{}
	if cfg.httpClient != nil {
		c := *cfg.httpClient
		httpClient = &c
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		version:    version,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		organism:   cfg.organism,
		assembly:   cfg.assembly,
		httpClient: httpClient,
		limiter:    cfg.limiter,
		recorder:   cfg.recorder,
		logger:     logger.With("release", version),
	}, nil
}

// WithEndpoints sets the release URL template and the latest-release URL.
// Empty values keep the defaults.
func WithEndpoints(urlTemplate, latestURL string) Option {
	return func(cfg *clientConfig) error {
		if urlTemplate != "" {
			cfg.urlTemplate = urlTemplate
		}
		if latestURL != "" {
			cfg.latestURL = latestURL
		}
		return nil
	}
}

// WithBaseURL pins the client to one URL regardless of release.
func WithBaseURL(u string) Option {
	return func(cfg *clientConfig) error {
		cfg.baseURL = u
		return nil
	}
}

// WithOrganism sets the species used by symbol lookups.
func WithOrganism(o string) Option {
	return func(cfg *clientConfig) error {
		if o == "" {
			return fmt.Errorf("ensembl: organism must not be empty")
		}
		cfg.organism = o
		return nil
	}
}

// WithAssembly sets the only genome assembly whose records are accepted.
func WithAssembly(a string) Option {
	return func(cfg *clientConfig) error {
		if a != "" {
			cfg.assembly = a
		}
		return nil
	}
}

// WithHTTPClient overrides the default HTTP client. c is copied so the
// configured timeout does not leak into it.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithTimeout sets a per-request timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		cfg.timeout = d
		return nil
	}
}

// WithLimiter gates every request through l.
func WithLimiter(l Limiter) Option {
	return func(cfg *clientConfig) error {
		cfg.limiter = l
		return nil
	}
}

// WithRecorder counts requests on r.
func WithRecorder(r Recorder) Option {
	return func(cfg *clientConfig) error {
		cfg.recorder = r
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// Version returns the release this client resolves against (0 = latest).
func (c *Client) Version() int { return c.version }

// BaseURL returns the endpoint the client was built for.
func (c *Client) BaseURL() string { return c.baseURL }

// LookupSymbol resolves a gene by its symbol. It returns nil when the gene
// is absent from this release or could not be resolved.
func (c *Client) LookupSymbol(ctx context.Context, symbol string) *genes.GenomicLocation {
	u := fmt.Sprintf("%s/lookup/symbol/%s/%s?expand=1",
		c.baseURL, url.PathEscape(c.organism), url.PathEscape(symbol))
	return c.lookup(ctx, u, "lookup symbol", symbol, symbol)
}

// LookupID resolves a gene by its stable identifier. It returns nil when the
// gene is absent from this release or could not be resolved.
func (c *Client) LookupID(ctx context.Context, ensemblID string) *genes.GenomicLocation {
	u := fmt.Sprintf("%s/lookup/id/%s", c.baseURL, url.PathEscape(ensemblID))
	return c.lookup(ctx, u, "lookup id", ensemblID, "")
}

func (c *Client) lookup(ctx context.Context, u, operation, key, defaultSymbol string) *genes.GenomicLocation {
	var rec lookupRecord
	err := c.getJSON(ctx, u, operation, &rec)
	switch {
	case errors.Is(err, errNotFound):
		c.observe(operation, "not_found")
		return nil
	case err != nil:
		c.observe(operation, "error")
		c.logger.WarnContext(ctx, "lookup failed, treating gene as not found",
			"operation", operation, "key", key, "error", err)
		return nil
	}

	if rec.AssemblyName != c.assembly {
		c.observe(operation, "wrong_assembly")
		c.logger.DebugContext(ctx, "non-reference assembly, treating gene as not found",
			"key", key, "assembly", rec.AssemblyName, "want", c.assembly)
		return nil
	}

	loc, err := rec.location(defaultSymbol)
	if err != nil {
		c.observe(operation, "error")
		c.logger.WarnContext(ctx, "malformed lookup record, treating gene as not found",
			"operation", operation, "key", key, "error", err)
		return nil
	}
	c.observe(operation, "ok")
	return loc
}

// getJSON waits for the limiter and decodes a successful response into dst.
// A 404 yields errNotFound.
func (c *Client) getJSON(ctx context.Context, u, operation string, dst any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limit: %w", operation, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("%s: HTTP %d: %s", operation, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

func (c *Client) observe(operation, outcome string) {
	if c.recorder != nil {
		c.recorder.ObserveRequest(serviceName, operation, outcome)
	}
}
