package crowd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RESPONDR/respondr/internal/models"
	"github.com/jonboulle/clockwork"
)

// Bounds on per-location state. History feeds the anomaly window and the
// history endpoint; alerts are kept for operator review. Both caps evict
// oldest first so state stays flat however fast a feed reports.
const (
	historyCap = 50
	alertsCap  = 100
)

// AlertPublisher receives anomaly events as they are detected. Publishing
// failures are logged and absorbed; an unreachable broker must not block
// observation ingestion.
type AlertPublisher interface {
	PublishAnomaly(ctx context.Context, event models.CrowdAnomalyEvent) error
}

// Monitor maintains the mutable per-location crowd state: it classifies
// observations, maintains each location's bounded rolling history, runs
// anomaly detection against it and records alerts. Updates to one location
// serialize; distinct locations proceed in parallel.
type Monitor struct {
	repo      Repository
	publisher AlertPublisher
	clock     clockwork.Clock
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMonitor creates a crowd monitor. Publisher may be nil when alerting is
// not configured; a nil clock uses real time.
func NewMonitor(repo Repository, publisher AlertPublisher, clock clockwork.Clock, logger *slog.Logger) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Monitor{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// RegisterLocation adds a monitoring site. Registering an existing ID
// updates its metadata but preserves accumulated history and alerts.
func (m *Monitor) RegisterLocation(ctx context.Context, locationID, name string, location *models.Location, areaSqm float64) (*models.CrowdLocationState, error) {
	if locationID == "" {
		return nil, fmt.Errorf("location id is required")
	}
	if areaSqm <= 0 {
		return nil, fmt.Errorf("area must be positive, got %v", areaSqm)
	}

	lock := m.locationLock(locationID)
	lock.Lock()
	defer lock.Unlock()

	state, err := m.repo.Get(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load location state: %w", err)
	}
	if state == nil {
		state = &models.CrowdLocationState{
			LocationID:     locationID,
			RollingHistory: []int{},
			Alerts:         []models.CrowdAlert{},
		}
	}

	state.Name = name
	state.Location = location
	state.AreaSqm = areaSqm

	if err := m.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save location state: %w", err)
	}

	m.logger.Info("registered crowd location", "location_id", locationID, "name", name, "area_sqm", areaSqm)
	return state, nil
}

// Observe ingests one raw count for a registered location: it classifies
// the count, detects anomalies against the rolling history, appends the
// count to the history and records any alert. The returned observation is
// a derived record and is never mutated afterwards.
func (m *Monitor) Observe(ctx context.Context, locationID string, count int) (*models.CrowdObservation, error) {
	lock := m.locationLock(locationID)
	lock.Lock()
	defer lock.Unlock()

	state, err := m.repo.Get(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load location state: %w", err)
	}
	if state == nil {
		return nil, fmt.Errorf("location %q is not registered", locationID)
	}

	now := m.clock.Now()
	classification := Classify(count, state.AreaSqm)
	anomaly := DetectAnomaly(count, state.RollingHistory)

	observation := &models.CrowdObservation{
		LocationID:     locationID,
		EstimatedCount: count,
		AreaSqm:        state.AreaSqm,
		Density:        classification.Density,
		DensityScore:   classification.Score,
		DensityTier:    classification.Tier,
		RiskLevel:      classification.RiskLevel,
		IsAnomalous:    anomaly.IsAnomalous,
		AnomalyType:    anomaly.Type,
		Timestamp:      now,
	}

	state.RollingHistory = appendBounded(state.RollingHistory, count, historyCap)
	state.CurrentCount = count
	state.CurrentRisk = classification.RiskLevel
	state.LastAnomaly = anomaly.Type
	state.LastUpdate = now

	if anomaly.IsAnomalous {
		alert := models.CrowdAlert{
			Timestamp: now,
			Type:      anomaly.Type,
			Severity:  anomaly.Severity,
			Message:   anomaly.Message,
		}
		state.Alerts = appendBoundedAlerts(state.Alerts, alert, alertsCap)
		m.publish(ctx, state, anomaly, count, observation)
	}

	if err := m.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save location state: %w", err)
	}

	return observation, nil
}

// History returns the most recent counts for a location, newest last.
func (m *Monitor) History(ctx context.Context, locationID string) ([]int, error) {
	state, err := m.repo.Get(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load location state: %w", err)
	}
	if state == nil {
		return nil, fmt.Errorf("location %q is not registered", locationID)
	}
	return state.RollingHistory, nil
}

// Locations returns the state of every registered location.
func (m *Monitor) Locations(ctx context.Context) ([]models.CrowdLocationState, error) {
	return m.repo.List(ctx)
}

// Summary aggregates monitored locations by current risk level.
func (m *Monitor) Summary(ctx context.Context) (*models.CrowdSummary, error) {
	states, err := m.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	summary := &models.CrowdSummary{
		ByRiskLevel: map[models.RiskLevel]int{
			models.RiskSafe:     0,
			models.RiskModerate: 0,
			models.RiskHigh:     0,
			models.RiskCritical: 0,
		},
	}
	for _, state := range states {
		summary.Total++
		if state.CurrentRisk != "" {
			summary.ByRiskLevel[state.CurrentRisk]++
		}
		if state.LastAnomaly != models.AnomalyNone {
			summary.Anomalous++
		}
	}
	return summary, nil
}

func (m *Monitor) publish(ctx context.Context, state *models.CrowdLocationState, anomaly Anomaly, count int, obs *models.CrowdObservation) {
	m.logger.Warn("crowd anomaly detected",
		"location_id", state.LocationID,
		"type", anomaly.Type,
		"severity", anomaly.Severity,
		"count", count)

	if m.publisher == nil {
		return
	}

	event := models.CrowdAnomalyEvent{
		LocationID:   state.LocationID,
		LocationName: state.Name,
		Type:         anomaly.Type,
		Severity:     anomaly.Severity,
		Message:      anomaly.Message,
		CurrentCount: count,
		Timestamp:    obs.Timestamp,
	}
	if err := m.publisher.PublishAnomaly(ctx, event); err != nil {
		m.logger.Error("failed to publish anomaly event",
			"location_id", state.LocationID, "error", err)
	}
}

// locationLock returns the mutex dedicated to one location.
func (m *Monitor) locationLock(locationID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[locationID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[locationID] = lock
	}
	return lock
}

func appendBounded(history []int, count, limit int) []int {
	history = append(history, count)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

func appendBoundedAlerts(alerts []models.CrowdAlert, alert models.CrowdAlert, limit int) []models.CrowdAlert {
	alerts = append(alerts, alert)
	if len(alerts) > limit {
		alerts = alerts[len(alerts)-limit:]
	}
	return alerts
}
