package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"stock-advisor/internal/application/port/input"
	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"

	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

type analyzeRequest struct {
	APIKey string `json:"apiKey"`
	Stock  string `json:"stock"`
}

type analyzeResponse struct {
	Analysis       string                   `json:"analysis"`
	Recommendation entity.Recommendation    `json:"recommendation,omitempty"`
	Steps          []entity.ScratchpadEntry `json:"steps,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	advisor input.Advisor
	logger  output.LoggerPort
	// timeout bounds one analysis; zero leaves only the client's context.
	timeout time.Duration
}

func NewHandler(advisor input.Advisor, logger output.LoggerPort, timeout time.Duration) *Handler {
	return &Handler{advisor: advisor, logger: logger, timeout: timeout}
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.advisor.Analyze(ctx, input.AnalyzeRequest{
		APIKey: req.APIKey,
		Stock:  req.Stock,
	})
	if err != nil {
		if errors.Is(err, entity.ErrInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing API key or stock name"})
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			h.logger.Warn("Analyze request timed out", "requestId", middleware.GetReqID(r.Context()), "stock", req.Stock)
			writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "Analysis timed out"})
			return
		}
		h.logger.Error("Analyze request failed",
			"requestId", middleware.GetReqID(r.Context()),
			"stock", req.Stock,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis:       res.FinalAnswer,
		Recommendation: res.Recommendation,
		Steps:          res.Steps,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
