package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testdataPath(name string) string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "testdata", name)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.PanelApp.RateLimit != (RateLimit{MaxCalls: 60, Window: Duration(time.Minute)}) {
		t.Errorf("panelapp budget = %+v", cfg.PanelApp.RateLimit)
	}
	if cfg.Ensembl.RateLimit != (RateLimit{MaxCalls: 15, Window: Duration(time.Second)}) {
		t.Errorf("ensembl budget = %+v", cfg.Ensembl.RateLimit)
	}
}

func TestLoadFromPath_YAML(t *testing.T) {
	cfg, err := LoadFromPath(testdataPath("panelcheck.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	want := Default()
	want.PanelApp.BaseURL = "http://panelapp.local/api/v1"
	want.PanelApp.Timeout = Duration(5 * time.Second)
	want.PanelApp.RateLimit = RateLimit{MaxCalls: 10, Window: Duration(30 * time.Second)}
	want.Ensembl.URLTemplate = "http://ensembl.local/e%d"
	want.Ensembl.Organism = "mus_musculus"
	want.Ensembl.RateLimit = RateLimit{MaxCalls: 3, Window: Duration(500 * time.Millisecond)}
	want.Pipeline.MaxInFlight = 4
	want.Log = Log{Level: "debug", Format: "json"}
	want.Metrics.Addr = ":9090"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	cfg, err := LoadFromPath(testdataPath("panelcheck.json"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.PanelApp.UserAgent != "lab-bot" {
		t.Errorf("user agent = %q", cfg.PanelApp.UserAgent)
	}
	if cfg.Ensembl.Timeout.Std() != 2*time.Second {
		t.Errorf("ensembl timeout = %s", cfg.Ensembl.Timeout)
	}
	if cfg.Ensembl.RateLimit.Window.Std() != time.Second || cfg.Ensembl.RateLimit.MaxCalls != 5 {
		t.Errorf("ensembl budget = %+v", cfg.Ensembl.RateLimit)
	}
	if cfg.PanelApp.RateLimit.MaxCalls != 60 {
		t.Errorf("unset panelapp budget should keep default, got %+v", cfg.PanelApp.RateLimit)
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	if _, err := LoadFromPath(testdataPath("nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_DetectFormat(t *testing.T) {
	fromJSON, err := Load([]byte(`{"pipeline":{"max_in_flight":3}}`), "")
	if err != nil {
		t.Fatalf("Load json: %v", err)
	}
	fromYAML, err := Load([]byte("pipeline:\n  max_in_flight: 3\n"), "")
	if err != nil {
		t.Fatalf("Load yaml: %v", err)
	}
	if fromJSON.Pipeline.MaxInFlight != 3 || fromYAML.Pipeline.MaxInFlight != 3 {
		t.Errorf("got json=%d yaml=%d", fromJSON.Pipeline.MaxInFlight, fromYAML.Pipeline.MaxInFlight)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"bad duration", "panelapp:\n  timeout: soon\n", ".yaml"},
		{"bad json", `{"panelapp":`, ".json"},
		{"unknown extension", "x = 1", ".toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.data), tt.ext); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvPanelAppURL: "http://override/api",
		EnvEnsemblURL:  "http://ens/e%d",
		EnvUserAgent:   "  ci-runner  ",
		EnvLogLevel:    "warn",
		EnvLogFormat:   "",
	}
	cfg := Default()
	ApplyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.PanelApp.BaseURL != "http://override/api" || cfg.Ensembl.URLTemplate != "http://ens/e%d" {
		t.Errorf("urls not overridden: %+v", cfg)
	}
	if cfg.PanelApp.UserAgent != "ci-runner" {
		t.Errorf("user agent = %q", cfg.PanelApp.UserAgent)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{"zero panelapp budget", func(c *Config) { c.PanelApp.RateLimit.MaxCalls = 0 }, "panelapp.rate_limit.max_calls"},
		{"zero ensembl window", func(c *Config) { c.Ensembl.RateLimit.Window = 0 }, "ensembl.rate_limit.window"},
		{"template without release", func(c *Config) { c.Ensembl.URLTemplate = "http://ens" }, "url_template"},
		{"no base url", func(c *Config) { c.PanelApp.BaseURL = "" }, "panelapp.base_url"},
		{"no in-flight", func(c *Config) { c.Pipeline.MaxInFlight = 0 }, "max_in_flight"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
