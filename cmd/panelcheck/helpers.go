package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"panelcheck/internal/config"
	"panelcheck/internal/logging"
	"panelcheck/internal/wiring"
)

// activeConfig is loaded once per invocation by setup.
var activeConfig config.Config

// setup loads the config (file, then environment, then flags) and
// initializes logging on stderr.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromPath(rootFlags.configPath)
	if err != nil {
		return err
	}
	if rootFlags.logLevel != "" {
		cfg.Log.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		cfg.Log.Format = rootFlags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())

	activeConfig = cfg
	return nil
}

func newApp() (*wiring.App, error) {
	app, err := wiring.Build(activeConfig)
	if err != nil {
		return nil, fmt.Errorf("wire application: %w", err)
	}
	return app, nil
}
