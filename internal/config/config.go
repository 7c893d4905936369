// Package config holds the runtime settings of panelcheck: upstream
// endpoints, rate budgets, pipelining, logging and metrics.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"panelcheck/internal/ensembl"
	"panelcheck/internal/genes"
	"panelcheck/internal/panelapp"
)

// Config is the complete settings tree.
type Config struct {
	PanelApp PanelApp `yaml:"panelapp" json:"panelapp"`
	Ensembl  Ensembl  `yaml:"ensembl" json:"ensembl"`
	Pipeline Pipeline `yaml:"pipeline" json:"pipeline"`
	Log      Log      `yaml:"log" json:"log"`
	Metrics  Metrics  `yaml:"metrics" json:"metrics"`
}

// PanelApp configures the panel catalog client.
type PanelApp struct {
	BaseURL   string    `yaml:"base_url" json:"base_url"`
	UserAgent string    `yaml:"user_agent" json:"user_agent"`
	Timeout   Duration  `yaml:"timeout" json:"timeout"`
	RateLimit RateLimit `yaml:"rate_limit" json:"rate_limit"`
}

// Ensembl configures the annotation clients.
type Ensembl struct {
	URLTemplate string    `yaml:"url_template" json:"url_template"`
	LatestURL   string    `yaml:"latest_url" json:"latest_url"`
	Organism    string    `yaml:"organism" json:"organism"`
	Assembly    string    `yaml:"assembly" json:"assembly"`
	Timeout     Duration  `yaml:"timeout" json:"timeout"`
	RateLimit   RateLimit `yaml:"rate_limit" json:"rate_limit"`
}

// RateLimit is a sliding-window call budget.
type RateLimit struct {
	MaxCalls int      `yaml:"max_calls" json:"max_calls"`
	Window   Duration `yaml:"window" json:"window"`
}

// Pipeline configures the analysis task graph.
type Pipeline struct {
	MaxInFlight int `yaml:"max_in_flight" json:"max_in_flight"`
}

// Log configures the process-wide logger.
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Metrics configures the prometheus endpoint. An empty address disables it.
type Metrics struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		PanelApp: PanelApp{
			BaseURL:   panelapp.DefaultBaseURL,
			UserAgent: panelapp.DefaultUserAgent,
			Timeout:   Duration(30 * time.Second),
			RateLimit: RateLimit{MaxCalls: 60, Window: Duration(time.Minute)},
		},
		Ensembl: Ensembl{
			URLTemplate: ensembl.DefaultURLTemplate,
			LatestURL:   ensembl.DefaultLatestURL,
			Organism:    ensembl.DefaultOrganism,
			Assembly:    genes.ReferenceAssembly,
			Timeout:     Duration(10 * time.Second),
			RateLimit:   RateLimit{MaxCalls: 15, Window: Duration(time.Second)},
		},
		Pipeline: Pipeline{MaxInFlight: 1},
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Validate reports every setting that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.PanelApp.BaseURL) == "" {
		errs = append(errs, errors.New("panelapp.base_url is required"))
	}
	if !strings.Contains(c.Ensembl.URLTemplate, "%d") {
		errs = append(errs, fmt.Errorf("ensembl.url_template %q has no %%d release placeholder", c.Ensembl.URLTemplate))
	}
	if strings.TrimSpace(c.Ensembl.Organism) == "" {
		errs = append(errs, errors.New("ensembl.organism is required"))
	}
	errs = append(errs,
		c.PanelApp.RateLimit.validate("panelapp.rate_limit"),
		c.Ensembl.RateLimit.validate("ensembl.rate_limit"),
	)
	if c.PanelApp.Timeout < 0 || c.Ensembl.Timeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if c.Pipeline.MaxInFlight <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_in_flight must be positive, got %d", c.Pipeline.MaxInFlight))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func (r RateLimit) validate(field string) error {
	if r.MaxCalls <= 0 {
		return fmt.Errorf("%s.max_calls must be positive, got %d", field, r.MaxCalls)
	}
	if r.Window <= 0 {
		return fmt.Errorf("%s.window must be positive, got %s", field, r.Window)
	}
	return nil
}

// Duration is a time.Duration written as "1m30s" in YAML and JSON.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML accepts a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	return d.parse(s)
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration: expected string or integer, got %s", data)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	*d = Duration(v)
	return nil
}
