package report

import (
	"fmt"
	"strings"

	"github.com/oceanair/partner-report/apimodels"
	"github.com/oceanair/partner-report/internal/profiles"
)

const systemPromptTemplate = `You are a senior operations executive at Ocean Air Travels, a premium travel company. You write professional partner reports that transform informal guide feedback into polished, human-written communications.

CRITICAL WRITING RULES:
1. Write as if a senior operations executive wrote it personally - not AI
2. Never use words like: complaint, fault, problem, issue, incident
3. Use phrases like: "kindly note", "as a proactive update", "to keep all partners aligned", "for your reference"
4. Never sound angry, defensive, sarcastic, or robotic
5. No emojis, no markdown formatting, no bullet points in the output
6. No mention of "AI", "model", "generated", or any technical terms
7. Vary sentence length for natural flow
8. Use complete paragraphs with smooth transitions
9. Be empathetic to the customer while protecting the company professionally
10. Frame everything as proactive communication, not reactive damage control

TONE INSTRUCTION:
%s

PLATFORM FORMATTING:
%s

STRUCTURE YOUR RESPONSE AS:
1. Professional greeting appropriate for the platform
2. Brief context of the booking (if details provided)
3. Factual explanation of the situation from the guide's perspective
4. Clarification of what was included vs. what may have been expected
5. Description of how our guide handled the situation professionally
6. Proactive communication intent and commitment to quality
7. Courteous closing with signature

Remember: This report will be sent to travel platform partners. It should reflect well on Ocean Air Travels while being honest and transparent.`

const analysisPromptTemplate = `Analyze this feedback and identify key elements. Return a JSON object with these fields:
- foodIssues: boolean
- customerBehavior: string (brief description or "None identified")
- expectationMismatch: string (brief description or "None identified")
- guideResponse: string (brief description or "Not mentioned")

Feedback: %s

Return ONLY valid JSON, no other text.`

// Prompts is the system/user pair for the report call.
type Prompts struct {
	System string
	User   string
}

// BuildPrompts renders the report prompts. It does no I/O.
func BuildPrompts(req apimodels.GenerateReportRequest, platform profiles.Platform, tone profiles.Tone) Prompts {
	var user strings.Builder
	user.WriteString("Please transform the following guide feedback into a professional partner report.\n\n")
	user.WriteString("RAW FEEDBACK FROM GUIDE:\n")
	user.WriteString(strings.TrimSpace(req.RawFeedback))
	user.WriteString("\n\n")

	details := []struct{ label, value string }{
		{"CUSTOMER NAME", req.CustomerName},
		{"BOOKING REFERENCE", req.BookingReference},
		{"TOUR NAME", req.TourName},
		{"MEAL INCLUSION", req.MealType},
		{"ADDITIONAL GUIDE REMARKS", req.GuideRemarks},
	}
	wrote := false
	for _, d := range details {
		if v := strings.TrimSpace(d.value); v != "" {
			fmt.Fprintf(&user, "%s: %s\n", d.label, v)
			wrote = true
		}
	}
	if wrote {
		user.WriteString("\n")
	}

	fmt.Fprintf(&user, "PLATFORM: %s\nTONE: %s\n\n", platform.Name, tone.Name)
	user.WriteString("Generate the professional report now. Write it as plain text without any markdown formatting, headers, or bullet points. The output should be ready to copy and paste into an email.")

	return Prompts{
		System: fmt.Sprintf(systemPromptTemplate, tone.Instruction, platform.Guidelines),
		User:   user.String(),
	}
}

// AnalysisPrompt asks for the four-field JSON reading of the feedback.
func AnalysisPrompt(rawFeedback string) string {
	return fmt.Sprintf(analysisPromptTemplate, strings.TrimSpace(rawFeedback))
}
