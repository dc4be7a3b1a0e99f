package reputation

import (
	"context"
	"fmt"

	"github.com/RESPONDR/respondr/internal/models"
	"github.com/jonboulle/clockwork"
)

// Ledger maintains per-caller accuracy state. It is the only persistent
// feedback loop in the triage engine: each adjudicated outcome shifts the
// confidence every future report from the same caller will receive.
type Ledger struct {
	repo  Repository
	clock clockwork.Clock
}

// NewLedger creates a ledger over the given repository. A nil clock uses
// real time; tests inject a fake for deterministic timestamps.
func NewLedger(repo Repository, clock clockwork.Clock) *Ledger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Ledger{repo: repo, clock: clock}
}

// RecordOutcome registers one adjudicated report for a caller, creating the
// record lazily on first contact. TotalReports increments eagerly on every
// call; FalseReports only when the report was adjudicated false. The
// falseReports <= totalReports invariant holds because both counters only
// move inside the repository's per-caller atomic update.
func (l *Ledger) RecordOutcome(ctx context.Context, callerID string, callerType models.CallerType, wasFalseReport bool) (*models.CallerReputationRecord, error) {
	if callerID == "" {
		return nil, fmt.Errorf("caller id is required")
	}

	now := l.clock.Now()

	record, err := l.repo.Update(ctx, callerID, func(r *models.CallerReputationRecord) {
		if r.CallerType == "" {
			r.CallerType = callerType
		}
		r.TotalReports++
		if wasFalseReport {
			r.FalseReports++
		}
		r.RecomputeScore()
		r.LastReportAt = now
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record caller outcome: %w", err)
	}

	return record, nil
}

// GetReputation returns the caller's record, or nil when the caller has no
// history. Missing history is a normal result, not an error.
func (l *Ledger) GetReputation(ctx context.Context, callerID string) (*models.CallerReputationRecord, error) {
	record, err := l.repo.Get(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read caller reputation: %w", err)
	}
	return record, nil
}
