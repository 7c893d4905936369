package wiring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"panelcheck/internal/config"
	"panelcheck/internal/ratelimit"
)

const panel42 = `{
	"name": "Test panel",
	"version": "1.4",
	"genes": [
		{"confidence_level": "3", "gene_data": {"gene_symbol": "A", "ensembl_id": "ENSGA"}},
		{"confidence_level": "2", "gene_data": {"gene_symbol": "B", "ensembl_id": "ENSGB"}},
		{"confidence_level": "1", "gene_data": {"gene_symbol": "C", "ensembl_id": "ENSGC"}},
		{"confidence_level": 3, "gene_data": {"gene_symbol": "D", "ensembl_id": "ENSGD"}}
	]
}`

// releases maps release -> symbol -> start coordinate. Absent symbols 404.
var releases = map[string]map[string]int64{
	"e109": {"A": 100, "B": 5000, "C": 9000},
	"e112": {"A": 100, "B": 5100, "C": 9000},
}

// upstream fakes both registries on one server: PanelApp under /panelapp,
// Ensembl releases under /ensembl/e<N>.
type upstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

// cleanupT is satisfied by *testing.T and ginkgo.GinkgoT().
type cleanupT interface {
	Helper()
	Cleanup(func())
}

func newUpstream(t cleanupT) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/panelapp/panels/", func(w http.ResponseWriter, r *http.Request) {
		u.record(r)
		switch r.URL.Path {
		case "/panelapp/panels/":
			w.Write([]byte(`{"count": 1, "next": null, "results": [
				{"id": 42, "name": "Test panel", "version": "1.4", "number_of_genes": 4, "version_signed_off": "2024-02-01"}
			]}`))
		case "/panelapp/panels/42/":
			w.Write([]byte(panel42))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Not found."}`))
		}
	})
	mux.HandleFunc("/ensembl/", func(w http.ResponseWriter, r *http.Request) {
		u.record(r)
		// /ensembl/e109/lookup/symbol/homo_sapiens/A
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/ensembl/"), "/")
		if len(parts) != 5 || parts[1] != "lookup" || parts[2] != "symbol" {
			http.NotFound(w, r)
			return
		}
		start, ok := releases[parts[0]][parts[4]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "No valid lookup found"}`))
			return
		}
		fmt.Fprintf(w, `{"id": "ENSG%s", "display_name": %q, "seq_region_name": "1", "start": %d, "end": %d, "strand": 1, "assembly_name": "GRCh38"}`,
			parts[4], parts[4], start, start+1000)
	})
	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) record(r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.requests = append(u.requests, r.URL.Path)
}

func (u *upstream) Requests() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.requests...)
}

func (u *upstream) config() config.Config {
	cfg := config.Default()
	cfg.PanelApp.BaseURL = u.URL + "/panelapp"
	cfg.Ensembl.URLTemplate = u.URL + "/ensembl/e%d"
	cfg.Ensembl.LatestURL = u.URL + "/ensembl/latest"
	return cfg
}

// frozenClock never lets admissions age out, so InWindow counts every
// request made during a test.
func frozenClock() ratelimit.Option {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return ratelimit.WithClock(
		func() time.Time { return now },
		func(context.Context, time.Duration) error { return errors.New("budget exhausted under a frozen clock") },
	)
}

func buildApp(t *testing.T, u *upstream) *App {
	t.Helper()
	app, err := Build(u.config(), WithHTTPClient(u.Client()), WithLimiterOptions(frozenClock()))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return app
}
