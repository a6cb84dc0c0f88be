package report

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/oceanair/partner-report/apimodels"
)

const unableToAnalyze = "Unable to analyze"

var codeFence = regexp.MustCompile("```(?:json)?\\n?|\\n?```")

// FallbackAnalysis is returned whenever the analysis call or its parsing fails.
func FallbackAnalysis() apimodels.AnalysisResult {
	return apimodels.AnalysisResult{
		FoodIssues:          false,
		CustomerBehavior:    unableToAnalyze,
		ExpectationMismatch: unableToAnalyze,
		GuideResponse:       unableToAnalyze,
	}
}

type rawAnalysis struct {
	FoodIssues          *bool   `json:"foodIssues"`
	CustomerBehavior    *string `json:"customerBehavior"`
	ExpectationMismatch *string `json:"expectationMismatch"`
	GuideResponse       *string `json:"guideResponse"`
}

// ParseAnalysis decodes the model's JSON answer, tolerating Markdown code
// fences. All four fields must be present.
func ParseAnalysis(text string) (apimodels.AnalysisResult, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
	if cleaned == "" {
		return apimodels.AnalysisResult{}, errors.New("empty analysis")
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return apimodels.AnalysisResult{}, err
	}
	if raw.FoodIssues == nil || raw.CustomerBehavior == nil || raw.ExpectationMismatch == nil || raw.GuideResponse == nil {
		return apimodels.AnalysisResult{}, errors.New("analysis is missing fields")
	}

	return apimodels.AnalysisResult{
		FoodIssues:          *raw.FoodIssues,
		CustomerBehavior:    *raw.CustomerBehavior,
		ExpectationMismatch: *raw.ExpectationMismatch,
		GuideResponse:       *raw.GuideResponse,
	}, nil
}
