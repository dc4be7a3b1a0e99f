package models

import (
	"time"
)

// IncidentReport represents a citizen emergency report together with the
// triage assessment computed once at ingestion. Severity and prank fields
// are not recomputed on later edits.
type IncidentReport struct {
	ID                 string         `json:"id"`
	IncidentType       IncidentType   `json:"incident_type"`
	LocationType       LocationType   `json:"location_type"`
	CallerID           string         `json:"caller_id"`
	CallerType         CallerType     `json:"caller_type"`
	Description        string         `json:"description"`
	Address            string         `json:"address,omitempty"`
	Location           *Location      `json:"location,omitempty"`
	NearbyCallCount    int            `json:"nearby_call_count"`
	AreaHistoricalRisk float64        `json:"area_historical_risk"` // 0-10 scale, supplied precomputed
	ReportedAtHour     int            `json:"reported_at_hour"`     // 0-23
	SeverityScore      float64        `json:"severity_score"`       // 1-10 scale
	PrankConfidence    float64        `json:"prank_confidence"`     // 0-1, higher = more likely false
	Action             TriageAction   `json:"action"`
	Verified           bool           `json:"verified"`
	VerificationNeeded bool           `json:"verification_needed"`
	Status             IncidentStatus `json:"status"`
	ReportedAt         time.Time      `json:"reported_at"`
}

// IncidentStatus represents the lifecycle state of an incident report.
type IncidentStatus string

const (
	IncidentStatusActive   IncidentStatus = "active"
	IncidentStatusResolved IncidentStatus = "resolved"
)

// IncidentType classifies the reported emergency.
type IncidentType string

const (
	IncidentFire             IncidentType = "fire"
	IncidentExplosion        IncidentType = "explosion"
	IncidentTerroristAttack  IncidentType = "terrorist_attack"
	IncidentMedical          IncidentType = "medical"
	IncidentMedicalEmergency IncidentType = "medical_emergency"
	IncidentHeartAttack      IncidentType = "heart_attack"
	IncidentAccident         IncidentType = "accident"
	IncidentFlood            IncidentType = "flood"
	IncidentEarthquake       IncidentType = "earthquake"
	IncidentBuildingCollapse IncidentType = "building_collapse"
	IncidentRiot             IncidentType = "riot"
	IncidentGasLeak          IncidentType = "gas_leak"
)

// LocationType classifies the kind of place an incident was reported at.
type LocationType string

const (
	LocationSchool      LocationType = "school"
	LocationHospital    LocationType = "hospital"
	LocationMall        LocationType = "mall"
	LocationResidential LocationType = "residential"
	LocationIndustrial  LocationType = "industrial"
	LocationGovernment  LocationType = "government"
	LocationHighway     LocationType = "highway"
	LocationBridge      LocationType = "bridge"
	LocationAirport     LocationType = "airport"
	LocationRailway     LocationType = "railway"
)

// CallerType classifies the identity tier of the reporting caller.
type CallerType string

const (
	CallerEmergencyServices CallerType = "emergency_services"
	CallerVerified          CallerType = "verified"
	CallerFirstTime         CallerType = "first_time"
	CallerAnonymous         CallerType = "anonymous"
)

// TriageAction is the dispatch decision derived from severity and prank confidence.
type TriageAction string

const (
	ActionAutoDispatch       TriageAction = "auto_dispatch"
	ActionManualVerification TriageAction = "manual_verification"
	ActionFlagForReview      TriageAction = "flag_for_review"
)

// TriageDecision is the outcome of the triage decision policy for one report.
type TriageDecision struct {
	Action             TriageAction `json:"action"`
	Verified           bool         `json:"verified"`
	VerificationNeeded bool         `json:"verification_needed"`
}

// Location represents geographic coordinates and place information.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
	City      string  `json:"city,omitempty"`
}

// Priority converts the 1-10 severity score to the coarse 1-5 dispatch
// priority used by responder tooling.
func (r *IncidentReport) Priority() int {
	p := int(r.SeverityScore / 2)
	if p < 1 {
		return 1
	}
	if p > 5 {
		return 5
	}
	return p
}

// IsCritical returns true when the report warrants immediate command attention.
func (r *IncidentReport) IsCritical() bool {
	return r.SeverityScore >= 8.0 && r.PrankConfidence < 0.7
}

// IncidentSummary aggregates incident counts for the analytics endpoint.
type IncidentSummary struct {
	Total    int                  `json:"total"`
	Active   int                  `json:"active"`
	Critical int                  `json:"critical"`
	ByType   map[IncidentType]int `json:"by_type"`
}
