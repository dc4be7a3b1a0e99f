package triage

import (
	"math"

	"github.com/RESPONDR/respondr/internal/models"
)

// FallbackSeverity is returned when a report's inputs are out of range.
// An emergency triage path must never fail closed, so a malformed report
// scores high enough to reach a human rather than being dropped.
const FallbackSeverity = 7.5

// SeverityInput carries the report fields the scorer consumes. Nearby call
// counts and area risk arrive precomputed from the request layer; the
// scorer performs no geospatial work of its own.
type SeverityInput struct {
	IncidentType       models.IncidentType
	NearbyCallCount    int
	LocationType       models.LocationType
	HourOfDay          int     // 0-23
	AreaHistoricalRisk float64 // 0-10
	CallerType         models.CallerType
}

// SeverityScorer combines incident type, call frequency, location risk,
// time of day, historical area risk and caller credibility into a 1-10
// severity value.
type SeverityScorer struct {
	tables *RiskTables
}

// NewSeverityScorer creates a scorer over the given risk tables.
func NewSeverityScorer(tables *RiskTables) *SeverityScorer {
	return &SeverityScorer{tables: tables}
}

type scoreFactor struct {
	name   string
	weight float64
	score  float64
}

// Score calculates the weighted severity for a report. Inputs that fall
// outside their documented ranges yield FallbackSeverity instead of an
// error.
func (s *SeverityScorer) Score(in SeverityInput) float64 {
	if !validSeverityInput(in) {
		return FallbackSeverity
	}

	factors := []scoreFactor{
		{name: "incident_type", weight: 0.25, score: float64(s.tables.IncidentScore(in.IncidentType)) / 10.0},
		{name: "call_frequency", weight: 0.15, score: math.Min(float64(in.NearbyCallCount)*0.1, 1.0)},
		{name: "location_risk", weight: 0.20, score: float64(s.tables.LocationScore(in.LocationType)) / 10.0},
		{name: "time_factor", weight: 0.15, score: timeScore(in.HourOfDay)},
		{name: "historical_data", weight: 0.10, score: in.AreaHistoricalRisk / 10.0},
		{name: "caller_credibility", weight: 0.15, score: float64(s.tables.CallerCredibility(in.CallerType)) / 10.0},
	}

	weighted := 0.0
	for _, factor := range factors {
		weighted += factor.weight * factor.score
	}

	// Convert to the 1-10 scale.
	return math.Min(10, math.Max(1, weighted*10))
}

// timeScore weights peak commute hours above quiet ones.
func timeScore(hour int) float64 {
	if isPeakHour(hour) {
		return 0.8
	}
	return 0.5
}

func isPeakHour(hour int) bool {
	return (hour >= 7 && hour <= 10) || (hour >= 16 && hour <= 20)
}

func validSeverityInput(in SeverityInput) bool {
	if in.HourOfDay < 0 || in.HourOfDay > 23 {
		return false
	}
	if in.NearbyCallCount < 0 {
		return false
	}
	if in.AreaHistoricalRisk < 0 || in.AreaHistoricalRisk > 10 {
		return false
	}
	if math.IsNaN(in.AreaHistoricalRisk) {
		return false
	}
	return true
}
