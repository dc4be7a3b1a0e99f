package triage

import (
	"github.com/RESPONDR/respondr/internal/models"
)

// Default lookup values used when a type is not present in the tables.
// Unknown keys resolving to the midpoint is a documented contract the
// scorers depend on, not a fallback to be tightened.
const (
	defaultTypeScore      = 5
	defaultConfidenceBase = 0.5
)

// RiskTables holds the static lookup data behind severity and prank scoring.
// Tables are populated once at startup and never mutated afterwards; every
// scorer shares the same instance by reference.
type RiskTables struct {
	incidentTypeScore    map[models.IncidentType]int
	locationRiskScore    map[models.LocationType]int
	callerCredibility    map[models.CallerType]int
	callerConfidenceBase map[models.CallerType]float64
}

// DefaultRiskTables returns the production lookup tables.
func DefaultRiskTables() *RiskTables {
	return &RiskTables{
		incidentTypeScore: map[models.IncidentType]int{
			models.IncidentFire:             10,
			models.IncidentExplosion:        9,
			models.IncidentTerroristAttack:  10,
			models.IncidentMedical:          8,
			models.IncidentMedicalEmergency: 8,
			models.IncidentHeartAttack:      9,
			models.IncidentAccident:         7,
			models.IncidentFlood:            6,
			models.IncidentEarthquake:       10,
			models.IncidentBuildingCollapse: 9,
			models.IncidentRiot:             8,
			models.IncidentGasLeak:          7,
		},
		locationRiskScore: map[models.LocationType]int{
			models.LocationSchool:      9,
			models.LocationHospital:    9,
			models.LocationMall:        8,
			models.LocationResidential: 5,
			models.LocationIndustrial:  7,
			models.LocationGovernment:  9,
			models.LocationHighway:     7,
			models.LocationBridge:      8,
			models.LocationAirport:     10,
			models.LocationRailway:     8,
		},
		callerCredibility: map[models.CallerType]int{
			models.CallerEmergencyServices: 9,
			models.CallerVerified:          8,
			models.CallerFirstTime:         5,
			models.CallerAnonymous:         3,
		},
		callerConfidenceBase: map[models.CallerType]float64{
			models.CallerEmergencyServices: 0.95,
			models.CallerVerified:          0.85,
			models.CallerFirstTime:         0.60,
			models.CallerAnonymous:         0.30,
		},
	}
}

// IncidentScore returns the 1-10 base score for an incident type.
func (t *RiskTables) IncidentScore(it models.IncidentType) int {
	if score, ok := t.incidentTypeScore[it]; ok {
		return score
	}
	return defaultTypeScore
}

// LocationScore returns the 1-10 base risk for a location type.
func (t *RiskTables) LocationScore(lt models.LocationType) int {
	if score, ok := t.locationRiskScore[lt]; ok {
		return score
	}
	return defaultTypeScore
}

// CallerCredibility returns the 1-10 credibility for a caller type.
func (t *RiskTables) CallerCredibility(ct models.CallerType) int {
	if score, ok := t.callerCredibility[ct]; ok {
		return score
	}
	return defaultTypeScore
}

// CallerConfidenceBase returns the 0-1 base confidence for a caller type.
func (t *RiskTables) CallerConfidenceBase(ct models.CallerType) float64 {
	if score, ok := t.callerConfidenceBase[ct]; ok {
		return score
	}
	return defaultConfidenceBase
}
