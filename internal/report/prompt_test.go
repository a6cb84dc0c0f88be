package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanair/partner-report/apimodels"
	"github.com/oceanair/partner-report/internal/profiles"
)

func TestBuildPrompts_AllFields(t *testing.T) {
	catalog, err := profiles.Load()
	require.NoError(t, err)

	req := apimodels.GenerateReportRequest{
		RawFeedback:      "  Customer was upset about lunch  ",
		CustomerName:     "Ana Souza",
		BookingReference: "GYG-12345",
		TourName:         "Sintra Day Trip",
		MealType:         "Light lunch",
		GuideRemarks:     "Offered an extra snack",
	}
	p := BuildPrompts(req, catalog.Platform("getyourguide"), catalog.Tone("soft"))

	want := `Please transform the following guide feedback into a professional partner report.

RAW FEEDBACK FROM GUIDE:
Customer was upset about lunch

CUSTOMER NAME: Ana Souza
BOOKING REFERENCE: GYG-12345
TOUR NAME: Sintra Day Trip
MEAL INCLUSION: Light lunch
ADDITIONAL GUIDE REMARKS: Offered an extra snack

PLATFORM: GetYourGuide
TONE: Soft & Apologetic

Generate the professional report now. Write it as plain text without any markdown formatting, headers, or bullet points. The output should be ready to copy and paste into an email.`
	assert.Equal(t, want, p.User)

	assert.True(t, strings.HasPrefix(p.System, "You are a senior operations executive at Ocean Air Travels"))
	assert.Contains(t, p.System, "Never use words like: complaint, fault, problem, issue, incident")
	assert.Contains(t, p.System, "TONE INSTRUCTION:\n"+catalog.Tone("soft").Instruction+"\n")
	assert.Contains(t, p.System, "PLATFORM FORMATTING:\n"+catalog.Platform("getyourguide").Guidelines+"\n")
}

func TestBuildPrompts_OnlyRequiredField(t *testing.T) {
	catalog, err := profiles.Load()
	require.NoError(t, err)

	p := BuildPrompts(apimodels.GenerateReportRequest{RawFeedback: "Lunch was late", CustomerName: "   "},
		catalog.Platform(""), catalog.Tone(""))

	want := `Please transform the following guide feedback into a professional partner report.

RAW FEEDBACK FROM GUIDE:
Lunch was late

PLATFORM: Generic Partner
TONE: Neutral

Generate the professional report now. Write it as plain text without any markdown formatting, headers, or bullet points. The output should be ready to copy and paste into an email.`
	assert.Equal(t, want, p.User)
	for _, label := range []string{"CUSTOMER NAME", "BOOKING REFERENCE", "TOUR NAME", "MEAL INCLUSION", "ADDITIONAL GUIDE REMARKS"} {
		assert.NotContains(t, p.User, label)
	}
}

func TestBuildPrompts_IsPure(t *testing.T) {
	catalog, err := profiles.Load()
	require.NoError(t, err)
	req := apimodels.GenerateReportRequest{RawFeedback: "x", TourName: "Douro Valley"}

	a := BuildPrompts(req, catalog.Platform("viator"), catalog.Tone("firm"))
	b := BuildPrompts(req, catalog.Platform("viator"), catalog.Tone("firm"))
	assert.Equal(t, a, b)
}

func TestAnalysisPrompt(t *testing.T) {
	got := AnalysisPrompt(" Customer was upset about lunch ")
	assert.Contains(t, got, "Feedback: Customer was upset about lunch\n")
	assert.True(t, strings.HasSuffix(got, "Return ONLY valid JSON, no other text."))
	for _, field := range []string{"foodIssues", "customerBehavior", "expectationMismatch", "guideResponse"} {
		assert.Contains(t, got, field)
	}
}
