package api

import (
	"net/http"
	"strings"
)

// SetupRoutes registers all API routes on the mux.
func SetupRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("/health", h.HealthHandler)

	mux.HandleFunc("/api/incidents/report", h.ReportIncidentHandler)
	mux.HandleFunc("/api/incidents/active", h.GetActiveIncidentsHandler)
	mux.HandleFunc("/api/incidents", h.GetIncidentsHandler)
	mux.HandleFunc("/api/incidents/", h.incidentSubrouteHandler)

	mux.HandleFunc("/api/callers/", h.callerSubrouteHandler)

	mux.HandleFunc("/api/crowd/locations", h.crowdLocationsHandler)
	mux.HandleFunc("/api/crowd/locations/", h.crowdSubrouteHandler)
	mux.HandleFunc("/api/crowd/summary", h.crowdSummaryRouteHandler)

	mux.HandleFunc("/api/analytics/summary", h.GetAnalyticsSummaryHandler)
}

// incidentSubrouteHandler dispatches /api/incidents/{id}/adjudicate.
func (h *Handler) incidentSubrouteHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) == 4 && parts[3] == "adjudicate" {
		h.AdjudicateIncidentHandler(w, r)
		return
	}
	http.NotFound(w, r)
}

// callerSubrouteHandler dispatches /api/callers/{id}/reputation.
func (h *Handler) callerSubrouteHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) == 4 && parts[3] == "reputation" {
		h.GetCallerReputationHandler(w, r)
		return
	}
	http.NotFound(w, r)
}

func (h *Handler) crowdLocationsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.RegisterLocationHandler(w, r)
	case http.MethodGet:
		h.ListLocationsHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// crowdSubrouteHandler dispatches the per-location crowd routes:
// /api/crowd/locations/{id}/observe, .../history and .../alerts.
func (h *Handler) crowdSubrouteHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 5 {
		http.NotFound(w, r)
		return
	}

	switch parts[4] {
	case "observe":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ObserveHandler(w, r)
	case "history":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.LocationHistoryHandler(w, r)
	case "alerts":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.LocationAlertsHandler(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) crowdSummaryRouteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.CrowdSummaryHandler(w, r)
}
