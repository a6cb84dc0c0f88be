package llm

import (
	"fmt"
	"log/slog"

	"github.com/oceanair/partner-report/internal/config"
)

// New builds the provider selected by cfg. Providers with a positive
// MaxRetries are wrapped in the retry policy.
func New(cfg config.ProviderConfig) (Provider, error) {
	var p Provider
	switch cfg.Name {
	case config.ProviderOpenAI:
		p = NewOpenAI(cfg)
	case config.ProviderGemini:
		p = NewGemini(cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}

	slog.Info("LLM provider ready",
		"provider", cfg.Name,
		"report_model", cfg.ReportModel,
		"analysis_model", cfg.AnalysisModel,
		"max_retries", cfg.MaxRetries,
	)
	if cfg.MaxRetries > 0 {
		return WithRetry(p, RetryPolicy{MaxRetries: cfg.MaxRetries}), nil
	}
	return p, nil
}
