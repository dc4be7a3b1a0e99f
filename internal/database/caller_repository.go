package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RESPONDR/respondr/internal/models"
)

// PostgresCallerRepository implements reputation.Repository using PostgreSQL.
// Update takes a row lock on the caller's record so concurrent outcome
// writes for the same caller serialize across instances; distinct callers
// never contend.
type PostgresCallerRepository struct {
	db *sql.DB
}

// NewPostgresCallerRepository creates a new PostgreSQL caller repository.
func NewPostgresCallerRepository(db *sql.DB) *PostgresCallerRepository {
	return &PostgresCallerRepository{db: db}
}

// Get retrieves a caller's reputation record, or nil when the caller has
// no history.
func (r *PostgresCallerRepository) Get(ctx context.Context, callerID string) (*models.CallerReputationRecord, error) {
	query := `
		SELECT caller_id, caller_type, total_reports, false_reports, reputation_score, last_report_at
		FROM caller_reputation
		WHERE caller_id = $1
	`

	record, err := scanCaller(r.db.QueryRowContext(ctx, query, callerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query caller reputation: %w", err)
	}
	return record, nil
}

// Update applies mutate to the caller's record inside a transaction that
// holds the row lock, inserting a neutral record first when absent.
func (r *PostgresCallerRepository) Update(ctx context.Context, callerID string, mutate func(*models.CallerReputationRecord)) (*models.CallerReputationRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin caller update: %w", err)
	}
	defer tx.Rollback()

	// Ensure the row exists so FOR UPDATE has something to lock.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO caller_reputation (caller_id, caller_type, total_reports, false_reports, reputation_score)
		VALUES ($1, '', 0, 0, $2)
		ON CONFLICT (caller_id) DO NOTHING
	`, callerID, models.NeutralReputation)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure caller row: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT caller_id, caller_type, total_reports, false_reports, reputation_score, last_report_at
		FROM caller_reputation
		WHERE caller_id = $1
		FOR UPDATE
	`, callerID)

	record, err := scanCaller(row)
	if err != nil {
		return nil, fmt.Errorf("failed to lock caller row: %w", err)
	}

	mutate(record)

	_, err = tx.ExecContext(ctx, `
		UPDATE caller_reputation
		SET caller_type = $2,
		    total_reports = $3,
		    false_reports = $4,
		    reputation_score = $5,
		    last_report_at = $6
		WHERE caller_id = $1
	`, record.CallerID, record.CallerType, record.TotalReports, record.FalseReports,
		record.ReputationScore, nullableTime(record))
	if err != nil {
		return nil, fmt.Errorf("failed to update caller reputation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit caller update: %w", err)
	}

	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCaller(row rowScanner) (*models.CallerReputationRecord, error) {
	var record models.CallerReputationRecord
	var lastReportAt sql.NullTime

	err := row.Scan(
		&record.CallerID,
		&record.CallerType,
		&record.TotalReports,
		&record.FalseReports,
		&record.ReputationScore,
		&lastReportAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReportAt.Valid {
		record.LastReportAt = lastReportAt.Time
	}
	return &record, nil
}

func nullableTime(record *models.CallerReputationRecord) sql.NullTime {
	if record.LastReportAt.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: record.LastReportAt, Valid: true}
}
