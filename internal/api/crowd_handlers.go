package api

import (
	"encoding/json"
	"net/http"

	"github.com/RESPONDR/respondr/internal/models"
)

// RegisterLocationRequest declares a site for crowd monitoring.
type RegisterLocationRequest struct {
	LocationID string           `json:"location_id"`
	Name       string           `json:"name"`
	Location   *models.Location `json:"location"`
	AreaSqm    float64          `json:"area_sqm"`
}

// RegisterLocationHandler handles POST /api/crowd/locations.
func (h *Handler) RegisterLocationHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := ValidateRegisterLocationRequest(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.monitor.RegisterLocation(r.Context(), req.LocationID, req.Name, req.Location, req.AreaSqm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, state)
}

// ListLocationsHandler handles GET /api/crowd/locations with optional
// risk_level and anomalous filters.
func (h *Handler) ListLocationsHandler(w http.ResponseWriter, r *http.Request) {
	states, err := h.monitor.Locations(r.Context())
	if err != nil {
		h.logger.Error("failed to list crowd locations", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	riskFilter := models.RiskLevel(r.URL.Query().Get("risk_level"))
	anomalousOnly := r.URL.Query().Get("anomalous") == "true"

	filtered := make([]models.CrowdLocationState, 0, len(states))
	for _, state := range states {
		if riskFilter != "" && state.CurrentRisk != riskFilter {
			continue
		}
		if anomalousOnly && state.LastAnomaly == models.AnomalyNone {
			continue
		}
		filtered = append(filtered, state)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"locations": filtered,
		"count":     len(filtered),
	})
}

// ObserveRequest carries one raw crowd count for a monitored location.
type ObserveRequest struct {
	EstimatedCount *int `json:"estimated_count"`
}

// ObserveHandler handles POST /api/crowd/locations/{id}/observe.
func (h *Handler) ObserveHandler(w http.ResponseWriter, r *http.Request) {
	locationID := pathSegment(r.URL.Path, 3)
	if locationID == "" {
		http.Error(w, "Location ID required", http.StatusBadRequest)
		return
	}

	var req ObserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.EstimatedCount == nil {
		http.Error(w, "estimated_count is required", http.StatusBadRequest)
		return
	}
	if *req.EstimatedCount < 0 {
		http.Error(w, "estimated_count must be non-negative", http.StatusBadRequest)
		return
	}

	observation, err := h.monitor.Observe(r.Context(), locationID, *req.EstimatedCount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if observation.IsAnomalous && h.recorder != nil {
		h.recorder.RecordCrowdAnomaly(observation.AnomalyType)
	}

	writeJSON(w, http.StatusOK, observation)
}

// LocationHistoryHandler handles GET /api/crowd/locations/{id}/history.
func (h *Handler) LocationHistoryHandler(w http.ResponseWriter, r *http.Request) {
	locationID := pathSegment(r.URL.Path, 3)
	if locationID == "" {
		http.Error(w, "Location ID required", http.StatusBadRequest)
		return
	}

	history, err := h.monitor.History(r.Context(), locationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"location_id": locationID,
		"history":     history,
		"count":       len(history),
	})
}

// LocationAlertsHandler handles GET /api/crowd/locations/{id}/alerts.
func (h *Handler) LocationAlertsHandler(w http.ResponseWriter, r *http.Request) {
	locationID := pathSegment(r.URL.Path, 3)
	if locationID == "" {
		http.Error(w, "Location ID required", http.StatusBadRequest)
		return
	}

	states, err := h.monitor.Locations(r.Context())
	if err != nil {
		h.logger.Error("failed to list crowd locations", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	for _, state := range states {
		if state.LocationID == locationID {
			writeJSON(w, http.StatusOK, map[string]any{
				"location_id": locationID,
				"alerts":      state.Alerts,
				"count":       len(state.Alerts),
			})
			return
		}
	}

	http.Error(w, "Location not found", http.StatusNotFound)
}

// CrowdSummaryHandler handles GET /api/crowd/summary.
func (h *Handler) CrowdSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.monitor.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to aggregate crowd state", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
