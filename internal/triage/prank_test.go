package triage

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/RESPONDR/respondr/internal/models"
)

type stubReputationReader struct {
	record *models.CallerReputationRecord
	err    error
}

func (s *stubReputationReader) GetReputation(ctx context.Context, callerID string) (*models.CallerReputationRecord, error) {
	return s.record, s.err
}

func TestPrankEstimator_AnonymousUncorroboratedNightCall(t *testing.T) {
	estimator := NewPrankEstimator(DefaultRiskTables(), &stubReputationReader{})

	// caller 0.30, corroboration 0.3, medical 0.9, 3am 0.4, empty
	// description 0.5, base 0.30: avg 0.45 inverted
	confidence := estimator.Estimate(context.Background(), PrankInput{
		CallerID:        "caller-1",
		CallerType:      models.CallerAnonymous,
		IncidentType:    models.IncidentMedical,
		Description:     "",
		HourOfDay:       3,
		NearbyCallCount: 1,
	})

	if math.Abs(confidence-0.55) > 1e-9 {
		t.Errorf("expected prank confidence 0.55, got %v", confidence)
	}
}

func TestPrankEstimator_CredibleCorroboratedReport(t *testing.T) {
	estimator := NewPrankEstimator(DefaultRiskTables(), &stubReputationReader{})

	description := "There is a large fire spreading through the second floor of the building, " +
		"heavy smoke everywhere, at least two people appear injured and one is bleeding, " +
		"we urgently need help, flames are visible from the street side"

	confidence := estimator.Estimate(context.Background(), PrankInput{
		CallerID:        "caller-2",
		CallerType:      models.CallerVerified,
		IncidentType:    models.IncidentFire,
		Description:     description,
		HourOfDay:       14,
		NearbyCallCount: 3,
	})

	if math.Abs(confidence-0.125) > 1e-9 {
		t.Errorf("expected prank confidence 0.125, got %v", confidence)
	}
}

func TestPrankEstimator_ReputationHistoryShiftsConfidence(t *testing.T) {
	tables := DefaultRiskTables()
	input := PrankInput{
		CallerID:        "caller-3",
		CallerType:      models.CallerVerified,
		IncidentType:    models.IncidentFire,
		HourOfDay:       14,
		NearbyCallCount: 1,
	}

	clean := NewPrankEstimator(tables, &stubReputationReader{
		record: &models.CallerReputationRecord{CallerID: "caller-3", TotalReports: 10, FalseReports: 0, ReputationScore: 1.0},
	})
	dirty := NewPrankEstimator(tables, &stubReputationReader{
		record: &models.CallerReputationRecord{CallerID: "caller-3", TotalReports: 10, FalseReports: 9, ReputationScore: 0.1},
	})

	cleanScore := clean.Estimate(context.Background(), input)
	dirtyScore := dirty.Estimate(context.Background(), input)

	if dirtyScore <= cleanScore {
		t.Errorf("expected poor history to raise prank confidence: clean=%v dirty=%v", cleanScore, dirtyScore)
	}
}

func TestPrankEstimator_ReputationReadFailureDegrades(t *testing.T) {
	tables := DefaultRiskTables()
	input := PrankInput{
		CallerID:        "caller-4",
		CallerType:      models.CallerVerified,
		IncidentType:    models.IncidentFire,
		HourOfDay:       14,
		NearbyCallCount: 1,
	}

	failing := NewPrankEstimator(tables, &stubReputationReader{err: errors.New("db down")})
	absent := NewPrankEstimator(tables, &stubReputationReader{})

	if failing.Estimate(context.Background(), input) != absent.Estimate(context.Background(), input) {
		t.Error("expected a failed reputation read to score like a caller with no history")
	}
}

func TestPrankEstimator_FallbackOnInvalidHour(t *testing.T) {
	estimator := NewPrankEstimator(DefaultRiskTables(), nil)

	for _, hour := range []int{-1, 24, 99} {
		confidence := estimator.Estimate(context.Background(), PrankInput{
			CallerType:   models.CallerVerified,
			IncidentType: models.IncidentFire,
			HourOfDay:    hour,
		})
		if confidence != FallbackPrankConfidence {
			t.Errorf("hour %d: expected fallback %v, got %v", hour, FallbackPrankConfidence, confidence)
		}
	}
}

func TestCorroborationScore(t *testing.T) {
	tests := []struct {
		nearbyCallCount int
		expected        float64
	}{
		{0, 0.3},
		{1, 0.3},
		{2, 0.7},
		{3, 0.9},
		{10, 0.9},
	}

	for _, tt := range tests {
		if got := corroborationScore(tt.nearbyCallCount); got != tt.expected {
			t.Errorf("corroborationScore(%d) = %v, want %v", tt.nearbyCallCount, got, tt.expected)
		}
	}
}

func TestTemporalScore(t *testing.T) {
	tests := []struct {
		hour     int
		expected float64
	}{
		{0, 0.7},
		{1, 0.4},
		{3, 0.4},
		{5, 0.4},
		{6, 0.7},
		{8, 0.9},
		{20, 0.9},
		{21, 0.7},
		{23, 0.7},
	}

	for _, tt := range tests {
		if got := temporalScore(tt.hour); got != tt.expected {
			t.Errorf("temporalScore(%d) = %v, want %v", tt.hour, got, tt.expected)
		}
	}
}

func TestDescriptionScore(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    float64
	}{
		{"empty is neutral", "", 0.5},
		{"hoax keyword", "this is just a prank call", 0.2},
		{"hoax keyword embedded", "testing if this works", 0.2},
		{"short vague text", "something happened", 0.55},
		{"longer text without distress", "a gathering of people outside the building on the corner has been growing for the last hour", 0.70},
		{
			"mid-length with distress signal",
			"please send help quickly there is an injured person lying on the ground near the bus stop on main street and they are not moving at all",
			0.85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := descriptionScore(tt.description); got != tt.expected {
				t.Errorf("descriptionScore(%q) = %v, want %v", tt.description, got, tt.expected)
			}
		})
	}
}

func TestLocationConsistency_UnknownTypeDefaults(t *testing.T) {
	if got := locationConsistency(models.IncidentType("locust_swarm")); got != 0.7 {
		t.Errorf("expected default consistency 0.7, got %v", got)
	}
}
