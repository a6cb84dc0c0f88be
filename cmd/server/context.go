package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/oceanair/partner-report/internal/config"
	"github.com/oceanair/partner-report/internal/llm"
	"github.com/oceanair/partner-report/internal/profiles"
	"github.com/oceanair/partner-report/internal/report"
)

type commandContext struct {
	envFile *string

	once      sync.Once
	config    *config.Config
	generator *report.Generator
	err       error
}

func newCommandContext(envFile *string) *commandContext {
	return &commandContext{envFile: envFile}
}

// ensureGenerator loads configuration, installs the logger and builds the
// report generator. A missing or invalid provider is not fatal: the generator
// then answers every request with the configuration error.
func (c *commandContext) ensureGenerator() (*config.Config, *report.Generator, error) {
	c.once.Do(func() {
		var path string
		if c.envFile != nil {
			path = strings.TrimSpace(*c.envFile)
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			c.err = err
			return
		}
		setupLogger(cfg.Log)
		cfg.LogSummary(slog.Default())

		catalog, err := profiles.Load()
		if err != nil {
			c.err = err
			return
		}

		c.config = cfg
		pc, err := cfg.ResolveProvider()
		if err != nil {
			slog.Warn("No usable AI provider, report requests will fail", "error", err)
			c.generator = report.NewUnconfigured(err, catalog)
			return
		}

		provider, err := llm.New(pc)
		if err != nil {
			c.err = err
			return
		}
		c.generator = report.New(provider, report.Models{
			Report:   pc.ReportModel,
			Analysis: pc.AnalysisModel,
		}, catalog)
	})
	return c.config, c.generator, c.err
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
