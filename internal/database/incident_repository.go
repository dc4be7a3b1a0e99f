package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/RESPONDR/respondr/internal/models"
)

// PostgresIncidentRepository stores incident reports in PostgreSQL.
type PostgresIncidentRepository struct {
	db *sql.DB
}

// NewPostgresIncidentRepository creates a new PostgreSQL incident repository.
func NewPostgresIncidentRepository(db *sql.DB) *PostgresIncidentRepository {
	return &PostgresIncidentRepository{db: db}
}

const incidentColumns = `
	id, incident_type, location_type, caller_id, caller_type, description,
	address, latitude, longitude, nearby_call_count, area_historical_risk,
	reported_at_hour, severity_score, prank_confidence, action, verified,
	verification_needed, status, reported_at
`

// Create stores a new incident report.
func (r *PostgresIncidentRepository) Create(ctx context.Context, report models.IncidentReport) error {
	var lat, lng sql.NullFloat64
	if report.Location != nil {
		lat = sql.NullFloat64{Float64: report.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: report.Location.Longitude, Valid: true}
	}

	query := `
		INSERT INTO incidents (` + incidentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.IncidentType, report.LocationType, report.CallerID,
		report.CallerType, report.Description, report.Address, lat, lng,
		report.NearbyCallCount, report.AreaHistoricalRisk, report.ReportedAtHour,
		report.SeverityScore, report.PrankConfidence, report.Action,
		report.Verified, report.VerificationNeeded, report.Status, report.ReportedAt)
	if err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}
	return nil
}

// GetByID retrieves an incident report, or nil when not found.
func (r *PostgresIncidentRepository) GetByID(ctx context.Context, id string) (*models.IncidentReport, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	report, err := scanIncident(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query incident: %w", err)
	}
	return report, nil
}

// List returns the most recent reports, newest first.
func (r *PostgresIncidentRepository) List(ctx context.Context, limit int) ([]models.IncidentReport, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY reported_at DESC LIMIT $1`
	return r.queryIncidents(ctx, query, limit)
}

// ListByStatus returns the most recent reports with the given status.
func (r *PostgresIncidentRepository) ListByStatus(ctx context.Context, status models.IncidentStatus, limit int) ([]models.IncidentReport, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE status = $1 ORDER BY reported_at DESC LIMIT $2`
	return r.queryIncidents(ctx, query, string(status), limit)
}

// UpdateStatus changes the status of an incident.
func (r *PostgresIncidentRepository) UpdateStatus(ctx context.Context, id string, status models.IncidentStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE incidents SET status = $2 WHERE id = $1", id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update incident status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("incident %q not found", id)
	}
	return nil
}

// Summary aggregates incident counts for the analytics endpoint.
func (r *PostgresIncidentRepository) Summary(ctx context.Context) (*models.IncidentSummary, error) {
	summary := &models.IncidentSummary{ByType: make(map[models.IncidentType]int)}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       COUNT(*) FILTER (WHERE severity_score >= 8 AND prank_confidence < 0.7)
		FROM incidents
	`).Scan(&summary.Total, &summary.Active, &summary.Critical)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate incidents: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT incident_type, COUNT(*) FROM incidents GROUP BY incident_type")
	if err != nil {
		return nil, fmt.Errorf("failed to count incidents by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var incidentType models.IncidentType
		var count int
		if err := rows.Scan(&incidentType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan incident type count: %w", err)
		}
		summary.ByType[incidentType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incident type counts: %w", err)
	}
	return summary, nil
}

func (r *PostgresIncidentRepository) queryIncidents(ctx context.Context, query string, args ...any) ([]models.IncidentReport, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var reports []models.IncidentReport
	for rows.Next() {
		report, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}
	return reports, nil
}

func scanIncident(row rowScanner) (*models.IncidentReport, error) {
	var report models.IncidentReport
	var lat, lng sql.NullFloat64

	err := row.Scan(
		&report.ID,
		&report.IncidentType,
		&report.LocationType,
		&report.CallerID,
		&report.CallerType,
		&report.Description,
		&report.Address,
		&lat,
		&lng,
		&report.NearbyCallCount,
		&report.AreaHistoricalRisk,
		&report.ReportedAtHour,
		&report.SeverityScore,
		&report.PrankConfidence,
		&report.Action,
		&report.Verified,
		&report.VerificationNeeded,
		&report.Status,
		&report.ReportedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		report.Location = &models.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	return &report, nil
}

// MemoryIncidentRepository keeps incident reports in memory for tests and
// for running without a database.
type MemoryIncidentRepository struct {
	mu      sync.RWMutex
	reports map[string]models.IncidentReport
}

// NewMemoryIncidentRepository creates an empty in-memory incident store.
func NewMemoryIncidentRepository() *MemoryIncidentRepository {
	return &MemoryIncidentRepository{reports: make(map[string]models.IncidentReport)}
}

// Create stores a new incident report.
func (r *MemoryIncidentRepository) Create(ctx context.Context, report models.IncidentReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[report.ID]; exists {
		return fmt.Errorf("incident %q already exists", report.ID)
	}
	r.reports[report.ID] = report
	return nil
}

// GetByID retrieves an incident report, or nil when not found.
func (r *MemoryIncidentRepository) GetByID(ctx context.Context, id string) (*models.IncidentReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, nil
	}
	return &report, nil
}

// List returns the most recent reports, newest first.
func (r *MemoryIncidentRepository) List(ctx context.Context, limit int) ([]models.IncidentReport, error) {
	return r.list(limit, func(models.IncidentReport) bool { return true })
}

// ListByStatus returns the most recent reports with the given status.
func (r *MemoryIncidentRepository) ListByStatus(ctx context.Context, status models.IncidentStatus, limit int) ([]models.IncidentReport, error) {
	return r.list(limit, func(report models.IncidentReport) bool { return report.Status == status })
}

// UpdateStatus changes the status of an incident.
func (r *MemoryIncidentRepository) UpdateStatus(ctx context.Context, id string, status models.IncidentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.reports[id]
	if !ok {
		return fmt.Errorf("incident %q not found", id)
	}
	report.Status = status
	r.reports[id] = report
	return nil
}

// Summary aggregates incident counts.
func (r *MemoryIncidentRepository) Summary(ctx context.Context) (*models.IncidentSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := &models.IncidentSummary{ByType: make(map[models.IncidentType]int)}
	for _, report := range r.reports {
		summary.Total++
		if report.Status == models.IncidentStatusActive {
			summary.Active++
		}
		if report.IsCritical() {
			summary.Critical++
		}
		summary.ByType[report.IncidentType]++
	}
	return summary, nil
}

func (r *MemoryIncidentRepository) list(limit int, keep func(models.IncidentReport) bool) ([]models.IncidentReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []models.IncidentReport
	for _, report := range r.reports {
		if keep(report) {
			reports = append(reports, report)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ReportedAt.After(reports[j].ReportedAt)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}
