package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/genai"

	"github.com/oceanair/partner-report/internal/config"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// Gemini calls the Generative Language REST API directly. The key travels as
// a query parameter, which the genai client does not support, so only its wire
// types are used here.
type Gemini struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewGemini(cfg config.ProviderConfig) *Gemini {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	return &Gemini{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (g *Gemini) Name() string { return config.ProviderGemini }

type geminiRequest struct {
	SystemInstruction *genai.Content          `json:"systemInstruction,omitempty"`
	Contents          []*genai.Content        `json:"contents"`
	GenerationConfig  *genai.GenerationConfig `json:"generationConfig"`
}

type geminiErrorBody struct {
	Error   *genai.APIError `json:"error"`
	Message string          `json:"message"`
}

func (g *Gemini) GenerateText(ctx context.Context, systemPrompt, userPrompt string, opts ...Option) (string, error) {
	options, err := applyOptions(userPrompt, opts)
	if err != nil {
		return "", err
	}

	body := geminiRequest{
		Contents:         []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)},
		GenerationConfig: &genai.GenerationConfig{},
	}
	if systemPrompt != "" {
		body.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
	}
	if options.Temperature != nil {
		t := float32(*options.Temperature)
		body.GenerationConfig.Temperature = &t
	}
	if options.MaxTokens != nil {
		body.GenerationConfig.MaxOutputTokens = int32(*options.MaxTokens)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.endpoint, url.PathEscape(options.Model), url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", newGeminiAPIError(httpResp, respBody)
	}

	var result genai.GenerateContentResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	return firstCandidateText(&result), nil
}

func newGeminiAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		Provider:   config.ProviderGemini,
		Status:     resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header),
	}

	var parsed geminiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		var details any
		_ = json.Unmarshal(body, &details)
		apiErr.Details = details
		if parsed.Error != nil {
			apiErr.Message = parsed.Error.Message
			apiErr.Code = parsed.Error.Status
		}
		if apiErr.Message == "" {
			apiErr.Message = parsed.Message
		}
	} else {
		apiErr.Details = string(body)
		apiErr.Message = strings.TrimSpace(string(body))
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Gemini request failed with status %d", resp.StatusCode)
	}
	return apiErr
}

// firstCandidateText joins every text part of the first candidate.
func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
