package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/RESPONDR/respondr/internal/models"
)

// PostgresCrowdRepository implements crowd.Repository using PostgreSQL.
// Rolling history and alerts are stored as JSONB documents; both are
// bounded by the monitor before they reach this layer.
type PostgresCrowdRepository struct {
	db *sql.DB
}

// NewPostgresCrowdRepository creates a new PostgreSQL crowd state repository.
func NewPostgresCrowdRepository(db *sql.DB) *PostgresCrowdRepository {
	return &PostgresCrowdRepository{db: db}
}

// Get retrieves a location's state, or nil when unregistered.
func (r *PostgresCrowdRepository) Get(ctx context.Context, locationID string) (*models.CrowdLocationState, error) {
	query := `
		SELECT location_id, name, latitude, longitude, area_sqm, rolling_history,
		       alerts, current_count, current_risk, last_anomaly, last_update
		FROM crowd_locations
		WHERE location_id = $1
	`

	state, err := scanCrowdState(r.db.QueryRowContext(ctx, query, locationID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query crowd location: %w", err)
	}
	return state, nil
}

// Save stores the full state for a location, inserting or replacing.
func (r *PostgresCrowdRepository) Save(ctx context.Context, state *models.CrowdLocationState) error {
	historyJSON, err := json.Marshal(state.RollingHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal rolling history: %w", err)
	}
	alertsJSON, err := json.Marshal(state.Alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	var lat, lng sql.NullFloat64
	if state.Location != nil {
		lat = sql.NullFloat64{Float64: state.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: state.Location.Longitude, Valid: true}
	}

	var lastUpdate sql.NullTime
	if !state.LastUpdate.IsZero() {
		lastUpdate = sql.NullTime{Time: state.LastUpdate, Valid: true}
	}

	query := `
		INSERT INTO crowd_locations (location_id, name, latitude, longitude, area_sqm,
			rolling_history, alerts, current_count, current_risk, last_anomaly, last_update)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (location_id) DO UPDATE SET
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			area_sqm = EXCLUDED.area_sqm,
			rolling_history = EXCLUDED.rolling_history,
			alerts = EXCLUDED.alerts,
			current_count = EXCLUDED.current_count,
			current_risk = EXCLUDED.current_risk,
			last_anomaly = EXCLUDED.last_anomaly,
			last_update = EXCLUDED.last_update
	`

	_, err = r.db.ExecContext(ctx, query,
		state.LocationID, state.Name, lat, lng, state.AreaSqm,
		historyJSON, alertsJSON, state.CurrentCount,
		string(state.CurrentRisk), string(state.LastAnomaly), lastUpdate)
	if err != nil {
		return fmt.Errorf("failed to save crowd location: %w", err)
	}
	return nil
}

// List returns state for every registered location.
func (r *PostgresCrowdRepository) List(ctx context.Context) ([]models.CrowdLocationState, error) {
	query := `
		SELECT location_id, name, latitude, longitude, area_sqm, rolling_history,
		       alerts, current_count, current_risk, last_anomaly, last_update
		FROM crowd_locations
		ORDER BY location_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list crowd locations: %w", err)
	}
	defer rows.Close()

	var states []models.CrowdLocationState
	for rows.Next() {
		state, err := scanCrowdState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crowd location: %w", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate crowd locations: %w", err)
	}
	return states, nil
}

func scanCrowdState(row rowScanner) (*models.CrowdLocationState, error) {
	var state models.CrowdLocationState
	var lat, lng sql.NullFloat64
	var historyJSON, alertsJSON []byte
	var currentRisk, lastAnomaly string
	var lastUpdate sql.NullTime

	err := row.Scan(
		&state.LocationID,
		&state.Name,
		&lat,
		&lng,
		&state.AreaSqm,
		&historyJSON,
		&alertsJSON,
		&state.CurrentCount,
		&currentRisk,
		&lastAnomaly,
		&lastUpdate,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		state.Location = &models.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &state.RollingHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rolling history: %w", err)
		}
	}
	if len(alertsJSON) > 0 {
		if err := json.Unmarshal(alertsJSON, &state.Alerts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alerts: %w", err)
		}
	}
	state.CurrentRisk = models.RiskLevel(currentRisk)
	state.LastAnomaly = models.AnomalyType(lastAnomaly)
	if lastUpdate.Valid {
		state.LastUpdate = lastUpdate.Time
	}
	return &state, nil
}
