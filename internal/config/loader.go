package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvPanelAppURL = "PANELCHECK_PANELAPP_URL"
	EnvEnsemblURL  = "PANELCHECK_ENSEMBL_URL"
	EnvUserAgent   = "PANELCHECK_USER_AGENT"
	EnvLogLevel    = "PANELCHECK_LOG_LEVEL"
	EnvLogFormat   = "PANELCHECK_LOG_FORMAT"
)

// LoadFromPath reads a config file (YAML or JSON) over the defaults and
// applies environment overrides. An empty path yields defaults plus
// environment.
func LoadFromPath(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		ApplyEnv(&cfg, os.LookupEnv)
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Load(data, filepath.Ext(path))
	if err != nil {
		return Config{}, err
	}
	ApplyEnv(&cfg, os.LookupEnv)
	return cfg, nil
}

// Load parses data over the defaults. ext is the file extension used as a
// format hint (".json", ".yaml"); empty means detect from content.
func Load(data []byte, ext string) (Config, error) {
	cfg := Default()
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config json: %w", err)
		}
	case ".yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported file type %q", ext)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with the PANELCHECK_* variables found by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvPanelAppURL, &cfg.PanelApp.BaseURL)
	set(EnvEnsemblURL, &cfg.Ensembl.URLTemplate)
	set(EnvUserAgent, &cfg.PanelApp.UserAgent)
	set(EnvLogLevel, &cfg.Log.Level)
	set(EnvLogFormat, &cfg.Log.Format)
}
