package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/ivtracker/internal/batch"
	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/internal/dashboard"
	"github.com/wonny/ivtracker/pkg/logger"
)

// RecommendationService is the part of the tracker the API needs
type RecommendationService interface {
	Recommendations(ctx context.Context) (*contracts.BatchResult, bool, error)
	Refresh(ctx context.Context) (*contracts.BatchResult, error)
}

// RecommendationHandler serves the recommendation table and alerts
type RecommendationHandler struct {
	service RecommendationService
	logger  *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(service RecommendationService, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
		logger:  log.Module("api"),
	}
}

// RecommendationsResponse is the body of GET /api/recommendations
type RecommendationsResponse struct {
	Rows        []RowResponse     `json:"rows"`
	Alerts      []dashboard.Alert `json:"alerts"`
	Skipped     []string          `json:"skipped"`
	Universe    []string          `json:"universe"`
	StrongBuys  int               `json:"strong_buys"`
	Cached      bool              `json:"cached"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// RowResponse is one table row with its display label
type RowResponse struct {
	contracts.ResultRow
	Display string `json:"display"`
}

// AlertsResponse is the body of GET /api/alerts
type AlertsResponse struct {
	Alerts      []dashboard.Alert `json:"alerts"`
	Count       int               `json:"count"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// GetRecommendations returns the recommendation table
// GET /api/recommendations?refresh=true
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	var (
		result *contracts.BatchResult
		cached bool
		err    error
	)
	if refresh {
		result, err = h.service.Refresh(r.Context())
	} else {
		result, cached, err = h.service.Recommendations(r.Context())
	}
	if err != nil {
		h.respondBatchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newRecommendationsResponse(result, cached))
}

// GetAlerts returns only the STRONG_BUY alerts
// GET /api/alerts
func (h *RecommendationHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	result, _, err := h.service.Recommendations(r.Context())
	if err != nil {
		h.respondBatchError(w, err)
		return
	}

	alerts := dashboard.Alerts(result.Rows)
	respondJSON(w, http.StatusOK, AlertsResponse{
		Alerts:      alerts,
		Count:       len(alerts),
		GeneratedAt: result.GeneratedAt,
	})
}

// Refresh drops the cached batch and recomputes it
// POST /api/refresh
func (h *RecommendationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Refresh(r.Context())
	if err != nil {
		h.respondBatchError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"rows":    len(result.Rows),
		"skipped": len(result.Skipped),
	}).Info("Recommendations refreshed")

	respondJSON(w, http.StatusOK, newRecommendationsResponse(result, false))
}

func (h *RecommendationHandler) respondBatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, batch.ErrEmptyBatchResult):
		respondError(w, http.StatusServiceUnavailable, "no data available")
	case errors.Is(err, batch.ErrNoSymbols):
		respondError(w, http.StatusInternalServerError, "no symbols configured")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "request cancelled")
	default:
		h.logger.WithError(err).Error("Failed to compute recommendations")
		respondError(w, http.StatusInternalServerError, "Failed to compute recommendations")
	}
}

func newRecommendationsResponse(result *contracts.BatchResult, cached bool) RecommendationsResponse {
	rows := make([]RowResponse, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, RowResponse{ResultRow: row, Display: row.Recommendation.Display()})
	}

	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}

	alerts := dashboard.Alerts(result.Rows)
	return RecommendationsResponse{
		Rows:        rows,
		Alerts:      alerts,
		Skipped:     skipped,
		Universe:    result.Universe,
		StrongBuys:  len(alerts),
		Cached:      cached,
		GeneratedAt: result.GeneratedAt,
	}
}
