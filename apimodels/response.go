package apimodels

type GenerateReportResponse struct {
	// The partner report, plain text ready to paste into an email
	Report string `json:"report"`

	// Structured reading of the raw feedback
	Analysis AnalysisResult `json:"analysis"`

	// Metadata about the generation
	Metadata ReportMetadata `json:"metadata"`
}

type AnalysisResult struct {
	FoodIssues          bool   `json:"foodIssues"`
	CustomerBehavior    string `json:"customerBehavior"`
	ExpectationMismatch string `json:"expectationMismatch"`
	GuideResponse       string `json:"guideResponse"`
}

type ReportMetadata struct {
	// Display name of the partner platform
	Platform string `json:"platform"`

	// Display name of the tone
	Tone string `json:"tone"`

	// Provider that generated the report
	Provider string `json:"provider"`

	// Model used for the report text
	Model string `json:"model"`

	// RFC 3339 completion time
	GeneratedAt string `json:"generatedAt"`

	// Identifies this generation in logs
	ReportID string `json:"reportId"`
}

type ErrorResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
