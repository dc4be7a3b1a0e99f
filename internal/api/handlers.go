package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RESPONDR/respondr/internal/crowd"
	"github.com/RESPONDR/respondr/internal/models"
	"github.com/RESPONDR/respondr/internal/reputation"
	"github.com/RESPONDR/respondr/internal/triage"
	"github.com/google/uuid"
	"log/slog"
)

// IncidentStore is the incident persistence the handlers consume.
type IncidentStore interface {
	Create(ctx context.Context, report models.IncidentReport) error
	GetByID(ctx context.Context, id string) (*models.IncidentReport, error)
	List(ctx context.Context, limit int) ([]models.IncidentReport, error)
	ListByStatus(ctx context.Context, status models.IncidentStatus, limit int) ([]models.IncidentReport, error)
	UpdateStatus(ctx context.Context, id string, status models.IncidentStatus) error
	Summary(ctx context.Context) (*models.IncidentSummary, error)
}

// DecisionRecorder receives each triage decision for metrics.
type DecisionRecorder interface {
	RecordTriageDecision(action models.TriageAction)
	RecordCrowdAnomaly(anomalyType models.AnomalyType)
}

// Handler serves the triage and crowd API.
type Handler struct {
	scorer    *triage.SeverityScorer
	estimator *triage.PrankEstimator
	policy    *triage.Policy
	ledger    *reputation.Ledger
	incidents IncidentStore
	monitor   *crowd.Monitor
	recorder  DecisionRecorder
	logger    *slog.Logger
	startTime time.Time
}

// NewHandler wires the triage engine behind the HTTP surface. Recorder may
// be nil when metrics are not configured.
func NewHandler(scorer *triage.SeverityScorer, estimator *triage.PrankEstimator, policy *triage.Policy, ledger *reputation.Ledger, incidents IncidentStore, monitor *crowd.Monitor, recorder DecisionRecorder, logger *slog.Logger) *Handler {
	return &Handler{
		scorer:    scorer,
		estimator: estimator,
		policy:    policy,
		ledger:    ledger,
		incidents: incidents,
		monitor:   monitor,
		recorder:  recorder,
		logger:    logger,
		startTime: time.Now(),
	}
}

// ReportIncidentRequest is the ingestion payload for a citizen report.
type ReportIncidentRequest struct {
	IncidentType       models.IncidentType `json:"incident_type"`
	LocationType       models.LocationType `json:"location_type"`
	CallerID           string              `json:"caller_id"`
	CallerType         models.CallerType   `json:"caller_type"`
	Description        string              `json:"description"`
	Address            string              `json:"address"`
	Location           *models.Location    `json:"location"`
	NearbyCallCount    int                 `json:"nearby_call_count"`
	AreaHistoricalRisk float64             `json:"area_historical_risk"`
	ReportedAtHour     *int                `json:"reported_at_hour"`
}

// ReportIncidentResponse echoes the triage assessment back to the reporter.
type ReportIncidentResponse struct {
	Message            string              `json:"message"`
	IncidentID         string              `json:"incident_id"`
	SeverityScore      float64             `json:"severity_score"`
	PrankConfidence    float64             `json:"prank_confidence"`
	Action             models.TriageAction `json:"action"`
	Verified           bool                `json:"verified"`
	VerificationNeeded bool                `json:"verification_needed"`
	Timestamp          time.Time           `json:"timestamp"`
}

// ReportIncidentHandler handles POST /api/incidents/report.
func (h *Handler) ReportIncidentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ReportIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := ValidateReportRequest(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	now := time.Now()
	hour := now.Hour()
	if req.ReportedAtHour != nil {
		hour = *req.ReportedAtHour
	}

	severity := h.scorer.Score(triage.SeverityInput{
		IncidentType:       req.IncidentType,
		NearbyCallCount:    req.NearbyCallCount,
		LocationType:       req.LocationType,
		HourOfDay:          hour,
		AreaHistoricalRisk: req.AreaHistoricalRisk,
		CallerType:         req.CallerType,
	})

	prankConfidence := h.estimator.Estimate(ctx, triage.PrankInput{
		CallerID:        req.CallerID,
		CallerType:      req.CallerType,
		IncidentType:    req.IncidentType,
		Description:     req.Description,
		HourOfDay:       hour,
		NearbyCallCount: req.NearbyCallCount,
	})

	decision := h.policy.Decide(ctx, req.CallerID, req.CallerType, severity, prankConfidence)
	if h.recorder != nil {
		h.recorder.RecordTriageDecision(decision.Action)
	}

	report := models.IncidentReport{
		ID:                 uuid.New().String(),
		IncidentType:       req.IncidentType,
		LocationType:       req.LocationType,
		CallerID:           req.CallerID,
		CallerType:         req.CallerType,
		Description:        req.Description,
		Address:            req.Address,
		Location:           req.Location,
		NearbyCallCount:    req.NearbyCallCount,
		AreaHistoricalRisk: req.AreaHistoricalRisk,
		ReportedAtHour:     hour,
		SeverityScore:      severity,
		PrankConfidence:    prankConfidence,
		Action:             decision.Action,
		Verified:           decision.Verified,
		VerificationNeeded: decision.VerificationNeeded,
		Status:             models.IncidentStatusActive,
		ReportedAt:         now,
	}

	if err := h.incidents.Create(ctx, report); err != nil {
		h.logger.Error("failed to store incident", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("incident reported",
		"incident_id", report.ID,
		"incident_type", report.IncidentType,
		"severity_score", severity,
		"prank_confidence", prankConfidence,
		"action", decision.Action)

	writeJSON(w, http.StatusCreated, ReportIncidentResponse{
		Message:            "Incident reported successfully",
		IncidentID:         report.ID,
		SeverityScore:      severity,
		PrankConfidence:    prankConfidence,
		Action:             decision.Action,
		Verified:           decision.Verified,
		VerificationNeeded: decision.VerificationNeeded,
		Timestamp:          report.ReportedAt,
	})
}

// GetIncidentsHandler handles GET /api/incidents.
func (h *Handler) GetIncidentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := parseLimit(r, 100)
	reports, err := h.incidents.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list incidents", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"incidents": reports,
		"count":     len(reports),
	})
}

// GetActiveIncidentsHandler handles GET /api/incidents/active.
func (h *Handler) GetActiveIncidentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := parseLimit(r, 100)
	reports, err := h.incidents.ListByStatus(r.Context(), models.IncidentStatusActive, limit)
	if err != nil {
		h.logger.Error("failed to list active incidents", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"incidents": reports,
		"count":     len(reports),
	})
}

// AdjudicateRequest records the external verdict on a report's truthfulness.
type AdjudicateRequest struct {
	WasFalseReport bool `json:"was_false_report"`
}

// AdjudicateIncidentHandler handles POST /api/incidents/{id}/adjudicate.
// Adjudication resolves the incident and feeds the verdict into the caller
// reputation ledger.
func (h *Handler) AdjudicateIncidentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	incidentID := pathSegment(r.URL.Path, 2)
	if incidentID == "" {
		http.Error(w, "Incident ID required", http.StatusBadRequest)
		return
	}

	var req AdjudicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	report, err := h.incidents.GetByID(ctx, incidentID)
	if err != nil {
		h.logger.Error("failed to load incident", "incident_id", incidentID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if report == nil {
		http.Error(w, "Incident not found", http.StatusNotFound)
		return
	}

	record, err := h.ledger.RecordOutcome(ctx, report.CallerID, report.CallerType, req.WasFalseReport)
	if err != nil {
		h.logger.Error("failed to record caller outcome", "incident_id", incidentID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.incidents.UpdateStatus(ctx, incidentID, models.IncidentStatusResolved); err != nil {
		h.logger.Error("failed to resolve incident", "incident_id", incidentID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Incident adjudicated",
		"incident_id": incidentID,
		"reputation":  record,
	})
}

// GetCallerReputationHandler handles GET /api/callers/{id}/reputation.
func (h *Handler) GetCallerReputationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	callerID := pathSegment(r.URL.Path, 2)
	if callerID == "" {
		http.Error(w, "Caller ID required", http.StatusBadRequest)
		return
	}

	record, err := h.ledger.GetReputation(r.Context(), callerID)
	if err != nil {
		h.logger.Error("failed to read caller reputation", "caller_id", callerID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "Caller has no history", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// GetAnalyticsSummaryHandler handles GET /api/analytics/summary.
func (h *Handler) GetAnalyticsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	incidents, err := h.incidents.Summary(ctx)
	if err != nil {
		h.logger.Error("failed to aggregate incidents", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	crowds, err := h.monitor.Summary(ctx)
	if err != nil {
		h.logger.Error("failed to aggregate crowd state", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": time.Now(),
		"incidents": incidents,
		"crowd":     crowds,
	})
}

// HealthHandler handles GET /health.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

// pathSegment returns the nth slash-separated segment of the path, or "".
func pathSegment(path string, n int) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if n >= len(parts) {
		return ""
	}
	return parts[n]
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
