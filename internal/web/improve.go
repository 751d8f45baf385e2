package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"quill/internal/gateway"
)

type improveRequest struct {
	Text        string   `json:"text"`
	MaxLength   int      `json:"max_length"`
	Temperature *float64 `json:"temperature"`
}

type improveResponse struct {
	GeneratedText string `json:"generated_text"`
	Success       bool   `json:"success"`
}

// handleImprove is the text improvement gateway: it validates input,
// forwards to the upstream model and maps its failure taxonomy onto the
// wire status codes. POST only; preflight is handled by the CORS layer.
func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	if s.cfg.GenAPIKey == "" {
		writeError(w, http.StatusInternalServerError, "improvement service is not configured", "")
		return
	}

	var req improveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required", "")
		return
	}
	maxLength := req.MaxLength
	if maxLength <= 0 {
		maxLength = s.cfg.ImproveMaxLength
	}
	temperature := s.cfg.ImproveTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	improved, err := s.gen.Improve(r.Context(), text, maxLength, temperature)
	if err != nil {
		status, msg := classifyUpstreamError(err)
		slog.Warn("improve failed", "status", status, "err", err)
		writeError(w, status, msg, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, improveResponse{GeneratedText: improved, Success: true})
}

func classifyUpstreamError(err error) (int, string) {
	switch {
	case errors.Is(err, gateway.ErrUpstreamAuth):
		return http.StatusForbidden, "upstream authentication failed"
	case errors.Is(err, gateway.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded, try again shortly"
	case errors.Is(err, gateway.ErrModelLoading):
		return http.StatusServiceUnavailable, "model is loading, try again shortly"
	case errors.Is(err, gateway.ErrEmptyResult):
		return http.StatusInternalServerError, "model returned an empty response"
	default:
		return http.StatusInternalServerError, "text improvement failed"
	}
}
