package panelapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"panelcheck/internal/logging"
)

// DefaultBaseURL is the public Genomics England PanelApp API.
const DefaultBaseURL = "https://panelapp.genomicsengland.co.uk/api/v1"

// DefaultUserAgent is sent when no other agent is configured.
const DefaultUserAgent = "panelcheck"

const serviceName = "panelapp"

// Limiter gates outgoing requests.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Recorder counts requests by operation and outcome.
type Recorder interface {
	ObserveRequest(service, operation, outcome string)
}

// Client talks to the panel catalog.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    Limiter
	recorder   Recorder
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
	limiter    Limiter
	recorder   Recorder
	userAgent  string
}

// New creates a Client for the catalog rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("panelapp: baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	cfg := &clientConfig{timeout: 30 * time.Second}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
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

	userAgent := cfg.userAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		limiter:    cfg.limiter,
		recorder:   cfg.recorder,
		logger:     logger,
	}, nil
}

// WithHTTPClient overrides the default HTTP client. c is copied so the
// configured timeout does not leak into it.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
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

// WithTimeout sets a timeout on the HTTP client. Zero keeps the client's own.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return fmt.Errorf("panelapp: negative timeout %s", d)
		}
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

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) error {
		cfg.userAgent = ua
		return nil
	}
}

// getJSON waits for the limiter, issues a GET and decodes the JSON response
// into dst. An error status yields an *APIError.
func (c *Client) getJSON(ctx context.Context, url, operation string, dst any) (err error) {
	defer func() { c.record(operation, err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limit: %w", operation, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "API request", "operation", operation, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API response", "operation", operation, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var detail errorBody
		if json.Unmarshal(body, &detail) == nil && detail.Detail != "" {
			return newAPIError(operation, resp.StatusCode, detail.Detail)
		}
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return newAPIError(operation, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

func (c *Client) record(operation string, err error) {
	if c.recorder == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case IsNotFound(err):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	c.recorder.ObserveRequest(serviceName, operation, outcome)
}
