package triage

import (
	"context"
	"log/slog"

	"github.com/RESPONDR/respondr/internal/models"
)

// Prank-confidence thresholds for the triage decision policy.
const (
	ThresholdAutoDispatch  = 0.3 // below: confident enough to dispatch unverified
	ThresholdFlagForReview = 0.7 // at or above: likely false, flag and record
)

// OutcomeRecorder is the ledger write the policy performs when it flags a
// report as a likely prank. Actual adjudication happens later and calls
// the ledger directly.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, callerID string, callerType models.CallerType, wasFalseReport bool) (*models.CallerReputationRecord, error)
}

// Policy turns a severity score and prank confidence into a dispatch action.
type Policy struct {
	ledger OutcomeRecorder
	logger *slog.Logger
}

// NewPolicy creates a triage decision policy backed by the given ledger.
func NewPolicy(ledger OutcomeRecorder, logger *slog.Logger) *Policy {
	return &Policy{ledger: ledger, logger: logger}
}

// Decide maps prank confidence onto an action. Flagged reports write a
// false-report outcome for the caller; a failed write is logged and
// absorbed so the decision itself always succeeds.
func (p *Policy) Decide(ctx context.Context, callerID string, callerType models.CallerType, severityScore, prankConfidence float64) models.TriageDecision {
	switch {
	case prankConfidence < ThresholdAutoDispatch:
		return models.TriageDecision{
			Action:   models.ActionAutoDispatch,
			Verified: true,
		}
	case prankConfidence < ThresholdFlagForReview:
		return models.TriageDecision{
			Action:             models.ActionManualVerification,
			VerificationNeeded: true,
		}
	default:
		if p.ledger != nil {
			if _, err := p.ledger.RecordOutcome(ctx, callerID, callerType, true); err != nil {
				p.logger.Error("failed to record flagged report against caller",
					"caller_id", callerID, "error", err)
			}
		}
		p.logger.Warn("report flagged for review",
			"caller_id", callerID,
			"severity_score", severityScore,
			"prank_confidence", prankConfidence)
		return models.TriageDecision{
			Action: models.ActionFlagForReview,
		}
	}
}
