package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oceanair/partner-report/internal/config"
)

// CodeInsufficientQuota is the OpenAI error code for an exhausted billing quota.
// It arrives with a 429 but must not be retried.
const CodeInsufficientQuota = "insufficient_quota"

const genericFailureMessage = "Failed to generate report"

// APIError is a non-success response from a provider.
type APIError struct {
	Provider   string
	Status     int
	Code       string
	Message    string
	Details    any
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s api error (status %d, code %s): %s", e.Provider, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.Status, e.Message)
}

// NormalizedError is what a caller of the HTTP API sees for a failed generation.
type NormalizedError struct {
	HTTPStatus        int
	Message           string
	RetryAfterSeconds int
}

// MapError classifies a provider failure into a stable status and message.
// The result depends only on the error's status, code and retry hint and on the
// provider name.
func MapError(err error, provider string) NormalizedError {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return NormalizedError{HTTPStatus: http.StatusInternalServerError, Message: genericFailureMessage}
	}
	if provider == config.ProviderGemini {
		return mapGeminiError(apiErr)
	}
	return mapOpenAIError(apiErr)
}

func mapOpenAIError(e *APIError) NormalizedError {
	switch {
	case e.Status == http.StatusUnauthorized:
		return NormalizedError{
			HTTPStatus: http.StatusUnauthorized,
			Message:    "OpenAI authentication failed. Please verify your OPENAI_API_KEY.",
		}
	case e.Status == http.StatusTooManyRequests && e.Code == CodeInsufficientQuota:
		return NormalizedError{
			HTTPStatus: http.StatusTooManyRequests,
			Message:    "OpenAI quota exhausted for this API key. Please check OpenAI billing/usage and add credit, then retry.",
		}
	case e.Status == http.StatusTooManyRequests:
		return NormalizedError{
			HTTPStatus:        http.StatusTooManyRequests,
			Message:           "OpenAI rate limit reached. Please wait a moment and try again.",
			RetryAfterSeconds: retryAfterSeconds(e.RetryAfter),
		}
	case e.Status == http.StatusBadRequest:
		return NormalizedError{
			HTTPStatus: http.StatusBadRequest,
			Message:    "OpenAI request was rejected. Please verify the input and try again.",
		}
	}
	return NormalizedError{HTTPStatus: passthroughStatus(e.Status), Message: genericFailureMessage}
}

func mapGeminiError(e *APIError) NormalizedError {
	switch e.Status {
	case http.StatusUnauthorized:
		return NormalizedError{
			HTTPStatus: http.StatusUnauthorized,
			Message:    "Gemini authentication failed. Please verify your GEMINI_API_KEY.",
		}
	case http.StatusTooManyRequests:
		return NormalizedError{
			HTTPStatus:        http.StatusTooManyRequests,
			Message:           "Gemini rate limit/quota reached. Please wait and try again, or check Google AI Studio quota/billing.",
			RetryAfterSeconds: retryAfterSeconds(e.RetryAfter),
		}
	case http.StatusForbidden:
		return NormalizedError{
			HTTPStatus: http.StatusForbidden,
			Message:    "Gemini request forbidden. Ensure the Generative Language API is enabled for this key and that it has access.",
		}
	case http.StatusBadRequest:
		return NormalizedError{
			HTTPStatus: http.StatusBadRequest,
			Message:    "Gemini request was rejected. Please verify the input and try again.",
		}
	case http.StatusNotFound:
		return NormalizedError{
			HTTPStatus: http.StatusNotFound,
			Message:    "Gemini model not found. Use supported models (e.g. gemini-2.5-flash, gemini-2.5-flash-lite) and set GEMINI_REPORT_MODEL / GEMINI_ANALYSIS_MODEL if overridden.",
		}
	}
	return NormalizedError{HTTPStatus: passthroughStatus(e.Status), Message: genericFailureMessage}
}

// passthroughStatus keeps upstream error statuses that are valid HTTP error codes.
func passthroughStatus(status int) int {
	if status >= 400 && status <= 599 {
		return status
	}
	return http.StatusInternalServerError
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// parseRetryAfter reads a Retry-After header given in seconds. HTTP-date
// values and garbage are treated as no hint.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	raw := strings.TrimSpace(h.Get("Retry-After"))
	if raw == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
