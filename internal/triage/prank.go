package triage

import (
	"context"
	"math"
	"strings"

	"github.com/RESPONDR/respondr/internal/models"
)

// FallbackPrankConfidence is returned when the estimator cannot evaluate a
// report. It mirrors the severity scorer's philosophy: a report the engine
// cannot reason about still flows to manual verification rather than being
// auto-dispatched or auto-flagged.
const FallbackPrankConfidence = 0.3

// ReputationReader exposes the caller reputation lookup the estimator
// blends into its caller factor. Missing history is a nil record, not an
// error.
type ReputationReader interface {
	GetReputation(ctx context.Context, callerID string) (*models.CallerReputationRecord, error)
}

// PrankInput carries the report fields the estimator consumes.
type PrankInput struct {
	CallerID        string
	CallerType      models.CallerType
	IncidentType    models.IncidentType
	Description     string
	HourOfDay       int // 0-23
	NearbyCallCount int // total calls for this area including the report itself
}

// PrankEstimator produces a 0-1 likelihood that a report is false. It
// averages independent confidence-it's-real factors and inverts the result,
// so every factor pulls with equal weight and the output stays explainable.
type PrankEstimator struct {
	tables      *RiskTables
	reputations ReputationReader
}

// NewPrankEstimator creates an estimator over the given risk tables and
// reputation source.
func NewPrankEstimator(tables *RiskTables, reputations ReputationReader) *PrankEstimator {
	return &PrankEstimator{tables: tables, reputations: reputations}
}

// Estimate returns the prank confidence for a report: higher means more
// likely false. It never returns an error; out-of-range inputs yield
// FallbackPrankConfidence and a failed reputation read degrades to the
// caller-type base score.
func (e *PrankEstimator) Estimate(ctx context.Context, in PrankInput) float64 {
	if in.HourOfDay < 0 || in.HourOfDay > 23 {
		return FallbackPrankConfidence
	}

	factors := []float64{
		e.callerReputation(ctx, in.CallerID, in.CallerType),
		corroborationScore(in.NearbyCallCount),
		locationConsistency(in.IncidentType),
		temporalScore(in.HourOfDay),
		descriptionScore(in.Description),
		e.tables.CallerConfidenceBase(in.CallerType),
	}

	total := 0.0
	for _, f := range factors {
		total += f
	}
	avgConfidence := total / float64(len(factors))

	if math.IsNaN(avgConfidence) {
		return FallbackPrankConfidence
	}

	// Invert: the factors measure confidence the report is real.
	return math.Max(0, math.Min(1, 1.0-avgConfidence))
}

// callerReputation blends the caller-type base confidence with the caller's
// adjudicated accuracy when history exists.
func (e *PrankEstimator) callerReputation(ctx context.Context, callerID string, callerType models.CallerType) float64 {
	score := e.tables.CallerConfidenceBase(callerType)

	if e.reputations != nil && callerID != "" {
		record, err := e.reputations.GetReputation(ctx, callerID)
		if err == nil && record.HasHistory() {
			score = (score + record.ReputationScore) / 2
		}
	}

	return math.Max(0.1, math.Min(0.99, score))
}

// corroborationScore raises confidence when independent nearby reports
// corroborate this one. The count arrives precomputed from the request
// layer and includes the report itself.
func corroborationScore(nearbyCallCount int) float64 {
	switch corroborating := nearbyCallCount - 1; {
	case corroborating >= 2:
		return 0.9
	case corroborating == 1:
		return 0.7
	default:
		return 0.3
	}
}

// locationConsistency scores how location-agnostic an incident type is.
// Medical emergencies happen anywhere; earthquake reports discriminate
// poorly between locations.
func locationConsistency(it models.IncidentType) float64 {
	scores := map[models.IncidentType]float64{
		models.IncidentFire:             0.8,
		models.IncidentMedical:          0.9,
		models.IncidentMedicalEmergency: 0.9,
		models.IncidentAccident:         0.7,
		models.IncidentFlood:            0.6,
		models.IncidentEarthquake:       0.5,
		models.IncidentExplosion:        0.7,
		models.IncidentBuildingCollapse: 0.8,
	}
	if score, ok := scores[it]; ok {
		return score
	}
	return 0.7
}

// temporalScore treats very-early-morning calls as suspect and daytime
// calls as reliable.
func temporalScore(hour int) float64 {
	if hour >= 1 && hour <= 5 {
		return 0.4
	}
	if hour >= 8 && hour <= 20 {
		return 0.9
	}
	return 0.7
}

var hoaxKeywords = []string{
	"test", "prank", "just kidding", "fake", "not real", "just testing",
}

var distressKeywords = []string{
	"emergency", "urgent", "help", "fire", "accident", "injured", "bleeding", "smoke",
}

// descriptionScore reads the free-text description for hoax markers and
// credible distress signal. An empty description is neutral.
func descriptionScore(description string) float64 {
	if description == "" {
		return 0.5
	}

	lower := strings.ToLower(description)

	for _, keyword := range hoaxKeywords {
		if strings.Contains(lower, keyword) {
			return 0.2
		}
	}

	distress := 0
	for _, keyword := range distressKeywords {
		if strings.Contains(lower, keyword) {
			distress++
		}
	}

	wordCount := len(strings.Fields(description))

	switch {
	case wordCount > 30 && distress >= 2:
		return 0.95
	case wordCount > 20 && distress >= 1:
		return 0.85
	case wordCount > 10:
		return 0.70
	default:
		return 0.55
	}
}
