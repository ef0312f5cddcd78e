package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simp-lee/epubmd/internal/config"
	"github.com/simp-lee/epubmd/internal/logging"
)

// commandContext carries the persistent flags and the lazily loaded config.
type commandContext struct {
	configFlag   string
	logLevel     string
	logFormat    string
	workers      int
	batchWorkers int

	config *config.Config
}

// ensureConfig loads the config once and applies flag overrides.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, _, _, err := config.Load(c.configFlag)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(c.logLevel))
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = strings.ToLower(strings.TrimSpace(c.logFormat))
	}
	if flags.Changed("workers") {
		cfg.Convert.Workers = c.workers
	}
	if flags.Changed("batch-workers") {
		cfg.Convert.BatchWorkers = c.batchWorkers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c.config = cfg
	return cfg, nil
}

func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	return logging.NewFromConfig(c.config, w)
}
