package models

import "testing"

func TestIncidentReport_Priority(t *testing.T) {
	tests := []struct {
		severity float64
		want     int
	}{
		{1.0, 1},
		{2.0, 1},
		{4.5, 2},
		{7.9, 3},
		{8.0, 4},
		{10.0, 5},
	}

	for _, tt := range tests {
		report := IncidentReport{SeverityScore: tt.severity}
		if got := report.Priority(); got != tt.want {
			t.Errorf("Priority() with severity %v = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestIncidentReport_IsCritical(t *testing.T) {
	tests := []struct {
		name            string
		severity        float64
		prankConfidence float64
		want            bool
	}{
		{"severe and credible", 9.0, 0.1, true},
		{"severe but likely prank", 9.0, 0.8, false},
		{"credible but minor", 5.0, 0.1, false},
		{"at severity boundary", 8.0, 0.69, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := IncidentReport{SeverityScore: tt.severity, PrankConfidence: tt.prankConfidence}
			if got := report.IsCritical(); got != tt.want {
				t.Errorf("IsCritical() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCallerReputationRecord_RecomputeScore(t *testing.T) {
	tests := []struct {
		name         string
		total        int
		falseReports int
		want         float64
	}{
		{"no history", 0, 0, NeutralReputation},
		{"perfect", 10, 0, 1.0},
		{"half false", 10, 5, 0.5},
		{"all false", 4, 4, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := CallerReputationRecord{TotalReports: tt.total, FalseReports: tt.falseReports}
			record.RecomputeScore()
			if record.ReputationScore != tt.want {
				t.Errorf("score = %v, want %v", record.ReputationScore, tt.want)
			}
		})
	}
}

func TestCallerReputationRecord_HasHistory(t *testing.T) {
	var nilRecord *CallerReputationRecord
	if nilRecord.HasHistory() {
		t.Error("nil record should have no history")
	}
	if (&CallerReputationRecord{}).HasHistory() {
		t.Error("zero reports should have no history")
	}
	if !(&CallerReputationRecord{TotalReports: 1}).HasHistory() {
		t.Error("one report should count as history")
	}
}
