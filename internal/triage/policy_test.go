package triage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/RESPONDR/respondr/internal/models"
	"log/slog"
)

type fakeOutcomeRecorder struct {
	calls []struct {
		callerID       string
		wasFalseReport bool
	}
	err error
}

func (f *fakeOutcomeRecorder) RecordOutcome(ctx context.Context, callerID string, callerType models.CallerType, wasFalseReport bool) (*models.CallerReputationRecord, error) {
	f.calls = append(f.calls, struct {
		callerID       string
		wasFalseReport bool
	}{callerID, wasFalseReport})
	if f.err != nil {
		return nil, f.err
	}
	return &models.CallerReputationRecord{CallerID: callerID}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPolicy_Decide(t *testing.T) {
	tests := []struct {
		name            string
		prankConfidence float64
		wantAction      models.TriageAction
		wantVerified    bool
		wantNeeded      bool
		wantLedgerWrite bool
	}{
		{"confident dispatch", 0.1, models.ActionAutoDispatch, true, false, false},
		{"just under dispatch threshold", 0.29, models.ActionAutoDispatch, true, false, false},
		{"dispatch threshold goes to verification", 0.3, models.ActionManualVerification, false, true, false},
		{"mid range", 0.5, models.ActionManualVerification, false, true, false},
		{"review threshold flags", 0.7, models.ActionFlagForReview, false, false, true},
		{"near certain prank", 0.95, models.ActionFlagForReview, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeOutcomeRecorder{}
			policy := NewPolicy(recorder, discardLogger())

			decision := policy.Decide(context.Background(), "caller-1", models.CallerAnonymous, 8.0, tt.prankConfidence)

			if decision.Action != tt.wantAction {
				t.Errorf("action = %v, want %v", decision.Action, tt.wantAction)
			}
			if decision.Verified != tt.wantVerified {
				t.Errorf("verified = %v, want %v", decision.Verified, tt.wantVerified)
			}
			if decision.VerificationNeeded != tt.wantNeeded {
				t.Errorf("verification_needed = %v, want %v", decision.VerificationNeeded, tt.wantNeeded)
			}

			if tt.wantLedgerWrite {
				if len(recorder.calls) != 1 {
					t.Fatalf("expected one ledger write, got %d", len(recorder.calls))
				}
				if !recorder.calls[0].wasFalseReport {
					t.Error("flagged report should be recorded as false")
				}
				if recorder.calls[0].callerID != "caller-1" {
					t.Errorf("ledger write for wrong caller: %s", recorder.calls[0].callerID)
				}
			} else if len(recorder.calls) != 0 {
				t.Errorf("unexpected ledger writes: %d", len(recorder.calls))
			}
		})
	}
}

func TestPolicy_LedgerFailureDoesNotBlockDecision(t *testing.T) {
	recorder := &fakeOutcomeRecorder{err: errors.New("db down")}
	policy := NewPolicy(recorder, discardLogger())

	decision := policy.Decide(context.Background(), "caller-1", models.CallerAnonymous, 8.0, 0.9)

	if decision.Action != models.ActionFlagForReview {
		t.Errorf("expected flag_for_review despite ledger failure, got %v", decision.Action)
	}
}

func TestPolicy_NilLedger(t *testing.T) {
	policy := NewPolicy(nil, discardLogger())

	decision := policy.Decide(context.Background(), "caller-1", models.CallerAnonymous, 8.0, 0.9)
	if decision.Action != models.ActionFlagForReview {
		t.Errorf("expected flag_for_review, got %v", decision.Action)
	}
}
