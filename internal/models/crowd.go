package models

import "time"

// DensityTier is the coarse crowd-density classification.
type DensityTier string

const (
	DensityLow      DensityTier = "LOW"
	DensityModerate DensityTier = "MODERATE"
	DensityHigh     DensityTier = "HIGH"
	DensityCritical DensityTier = "CRITICAL"
)

// RiskLevel is the derived hazard classification for a crowd observation.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// AnomalyType identifies the statistical pattern behind a flagged observation.
type AnomalyType string

const (
	AnomalyRapidIncrease    AnomalyType = "RAPID_INCREASE"
	AnomalyModerateIncrease AnomalyType = "MODERATE_INCREASE"
	AnomalyRapidDecrease    AnomalyType = "RAPID_DECREASE"
	AnomalyNone             AnomalyType = ""
)

// AnomalySeverity grades how far outside the expected band an observation fell.
type AnomalySeverity string

const (
	AnomalySeverityHigh   AnomalySeverity = "HIGH"
	AnomalySeverityMedium AnomalySeverity = "MEDIUM"
)

// CrowdLocationState is the per-location mutable state held for a monitored
// site. RollingHistory keeps the most recent observation counts, oldest
// evicted first; Alerts keeps the most recent anomaly events. Both are
// bounded so state growth stays flat regardless of feed rate.
type CrowdLocationState struct {
	LocationID     string       `json:"location_id"`
	Name           string       `json:"name"`
	Location       *Location    `json:"location,omitempty"`
	AreaSqm        float64      `json:"area_sqm"`
	RollingHistory []int        `json:"rolling_history"`
	Alerts         []CrowdAlert `json:"alerts"`
	CurrentCount   int          `json:"current_count"`
	CurrentRisk    RiskLevel    `json:"current_risk,omitempty"`
	LastAnomaly    AnomalyType  `json:"last_anomaly,omitempty"` // anomaly state of the latest observation
	LastUpdate     time.Time    `json:"last_update"`
}

// CrowdAlert is one anomaly event recorded against a monitored location.
type CrowdAlert struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      AnomalyType     `json:"type"`
	Severity  AnomalySeverity `json:"severity"`
	Message   string          `json:"message"`
}

// CrowdObservation is the derived record for a single processed count.
// It is appended to the location's rolling history and never mutated after
// creation.
type CrowdObservation struct {
	LocationID     string      `json:"location_id"`
	EstimatedCount int         `json:"estimated_count"`
	AreaSqm        float64     `json:"area_sqm"`
	Density        float64     `json:"density"`       // people per square metre
	DensityScore   float64     `json:"density_score"` // 0-1, continuous across tiers
	DensityTier    DensityTier `json:"density_tier"`
	RiskLevel      RiskLevel   `json:"risk_level"`
	IsAnomalous    bool        `json:"is_anomalous"`
	AnomalyType    AnomalyType `json:"anomaly_type,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// CrowdAnomalyEvent is the wire record published to the alerting topic when
// an observation is flagged.
type CrowdAnomalyEvent struct {
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name,omitempty"`
	Type         AnomalyType     `json:"type"`
	Severity     AnomalySeverity `json:"severity"`
	Message      string          `json:"message"`
	CurrentCount int             `json:"current_count"`
	Timestamp    time.Time       `json:"timestamp"`
}

// CrowdSummary aggregates monitored locations by risk level.
type CrowdSummary struct {
	Total       int               `json:"total"`
	Anomalous   int               `json:"anomalous"`
	ByRiskLevel map[RiskLevel]int `json:"by_risk_level"`
}
