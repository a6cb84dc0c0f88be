package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/oceanair/partner-report/apimodels"
	"github.com/oceanair/partner-report/internal/llm"
	"github.com/oceanair/partner-report/internal/report"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("request_id", middleware.GetReqID(r.Context()))

	var req apimodels.GenerateReportRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	// An empty body decodes as an empty request and fails validation instead.
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Rejected report request", "error", err)
		writeJSON(w, http.StatusBadRequest, apimodels.ErrorResponse{Error: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	logger.Debug("Received report request", "platform", req.Platform, "tone", req.Tone)

	result, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
			// chi's Timeout middleware answers 504 once the handler returns.
			logger.Error("Report request timed out", "error", err)
			return
		}
		status, resp := s.classify(err)
		logger.Error("Report request failed", "error", err, "status", status)
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// classify turns any pipeline error into the client-facing status and body.
// Upstream error text never reaches the client.
func (s *Server) classify(err error) (int, apimodels.ErrorResponse) {
	var rerr *report.Error
	if errors.As(err, &rerr) {
		return rerr.HTTPStatus(), apimodels.ErrorResponse{Error: rerr.Message}
	}

	provider := s.generator.ProviderName()
	if provider == "" {
		provider = s.provider
	}
	n := llm.MapError(err, provider)
	return n.HTTPStatus, apimodels.ErrorResponse{Error: n.Message, RetryAfterSeconds: n.RetryAfterSeconds}
}

func handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apimodels.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, apimodels.ErrorResponse{Error: "Method not allowed"})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, apimodels.ErrorResponse{Error: "Not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
