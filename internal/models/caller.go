package models

import "time"

// CallerReputationRecord tracks the adjudicated accuracy of a single caller
// identity. Records are created lazily on first report and never deleted;
// they are the audit trail behind the prank-confidence feedback loop.
type CallerReputationRecord struct {
	CallerID        string     `json:"caller_id"`
	CallerType      CallerType `json:"caller_type"`
	TotalReports    int        `json:"total_reports"`
	FalseReports    int        `json:"false_reports"`
	ReputationScore float64    `json:"reputation_score"` // 0-1, 1 = perfect accuracy
	LastReportAt    time.Time  `json:"last_report_at"`
}

// NeutralReputation is the reputation assumed for a caller with no
// adjudicated history.
const NeutralReputation = 0.5

// RecomputeScore derives the reputation score from the report counters.
// A caller with no reports keeps the neutral default.
func (r *CallerReputationRecord) RecomputeScore() {
	if r.TotalReports <= 0 {
		r.ReputationScore = NeutralReputation
		return
	}
	r.ReputationScore = 1.0 - float64(r.FalseReports)/float64(r.TotalReports)
}

// HasHistory reports whether the caller has any adjudicated reports to
// blend into future confidence estimates.
func (r *CallerReputationRecord) HasHistory() bool {
	return r != nil && r.TotalReports > 0
}
