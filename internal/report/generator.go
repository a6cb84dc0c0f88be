package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oceanair/partner-report/apimodels"
	"github.com/oceanair/partner-report/internal/llm"
	"github.com/oceanair/partner-report/internal/profiles"
)

const (
	reportTemperature   = 0.7
	reportMaxTokens     = 1500
	analysisTemperature = 0.3
	analysisMaxTokens   = 300
)

// Models names the model used for each of the two calls.
type Models struct {
	Report   string
	Analysis string
}

// Generator turns guide feedback into a partner report and an analysis.
// It holds no per-request state and may be shared between requests.
type Generator struct {
	provider llm.Provider
	models   Models
	catalog  *profiles.Catalog
	setupErr error
	now      func() time.Time
}

func New(provider llm.Provider, models Models, catalog *profiles.Catalog) *Generator {
	return &Generator{
		provider: provider,
		models:   models,
		catalog:  catalog,
		now:      time.Now,
	}
}

// NewUnconfigured returns a generator that fails every request with a
// configuration error carrying setupErr's message.
func NewUnconfigured(setupErr error, catalog *profiles.Catalog) *Generator {
	return &Generator{
		catalog:  catalog,
		setupErr: setupErr,
		now:      time.Now,
	}
}

// ProviderName is the configured provider, or "" when unconfigured.
func (g *Generator) ProviderName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// Generate produces the report and a best-effort analysis. Provider failures
// of the report call are returned as-is for classification by llm.MapError;
// the analysis never fails the request.
func (g *Generator) Generate(ctx context.Context, req apimodels.GenerateReportRequest) (*apimodels.GenerateReportResponse, error) {
	if g.provider == nil {
		msg := "No AI provider configured."
		if g.setupErr != nil {
			msg = g.setupErr.Error()
		}
		return nil, &Error{Kind: KindConfig, Message: msg, Err: g.setupErr}
	}
	if strings.TrimSpace(req.RawFeedback) == "" {
		return nil, &Error{Kind: KindValidation, Message: "Raw feedback is required"}
	}

	reportID := uuid.NewString()
	platform := g.catalog.Platform(req.Platform)
	tone := g.catalog.Tone(req.Tone)
	prompts := BuildPrompts(req, platform, tone)

	logger := slog.With("report_id", reportID, "provider", g.provider.Name())
	logger.Info("Generating report", "platform", platform.ID, "tone", tone.ID, "model", g.models.Report)
	startTime := time.Now()

	var (
		reportText string
		analysis   = FallbackAnalysis()
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		text, err := g.provider.GenerateText(egCtx, prompts.System, prompts.User,
			llm.WithModel(g.models.Report),
			llm.WithTemperature(reportTemperature),
			llm.WithMaxTokens(reportMaxTokens),
		)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return &Error{Kind: KindGeneration, Message: "Failed to generate report"}
		}
		reportText = text
		return nil
	})
	eg.Go(func() error {
		analysis = g.analyze(egCtx, logger, req.RawFeedback)
		return nil
	})
	if err := eg.Wait(); err != nil {
		logger.Error("Report generation failed", "error", err, "duration", time.Since(startTime))
		return nil, err
	}

	logger.Info("Report generated", "duration", time.Since(startTime), "length", len(reportText))
	return &apimodels.GenerateReportResponse{
		Report:   reportText,
		Analysis: analysis,
		Metadata: apimodels.ReportMetadata{
			Platform:    platform.Name,
			Tone:        tone.Name,
			Provider:    g.provider.Name(),
			Model:       g.models.Report,
			GeneratedAt: g.now().UTC().Format(time.RFC3339Nano),
			ReportID:    reportID,
		},
	}, nil
}

// analyze never returns an error; any failure yields FallbackAnalysis.
func (g *Generator) analyze(ctx context.Context, logger *slog.Logger, rawFeedback string) (result apimodels.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Analysis panicked, using fallback", "panic", fmt.Sprint(r))
			result = FallbackAnalysis()
		}
	}()

	text, err := g.provider.GenerateText(ctx, "", AnalysisPrompt(rawFeedback),
		llm.WithModel(g.models.Analysis),
		llm.WithTemperature(analysisTemperature),
		llm.WithMaxTokens(analysisMaxTokens),
	)
	if err != nil {
		logger.Warn("Analysis call failed, using fallback", "error", err)
		return FallbackAnalysis()
	}

	parsed, err := ParseAnalysis(text)
	if err != nil {
		logger.Warn("Analysis response unusable, using fallback", "error", err)
		return FallbackAnalysis()
	}
	return parsed
}
