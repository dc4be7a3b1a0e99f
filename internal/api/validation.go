package api

import (
	"fmt"

	"github.com/RESPONDR/respondr/internal/models"
)

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validCallerTypes = map[models.CallerType]bool{
	models.CallerEmergencyServices: true,
	models.CallerVerified:          true,
	models.CallerFirstTime:         true,
	models.CallerAnonymous:         true,
}

// ValidateReportRequest checks an incident report payload. Incident and
// location types are not constrained to a fixed list; unknown values fall
// through to the scoring tables' defaults.
func ValidateReportRequest(req *ReportIncidentRequest) error {
	if req.IncidentType == "" {
		return ValidationError{Field: "incident_type", Message: "is required"}
	}
	if req.CallerID == "" {
		return ValidationError{Field: "caller_id", Message: "is required"}
	}
	if req.CallerType == "" {
		return ValidationError{Field: "caller_type", Message: "is required"}
	}
	if !validCallerTypes[req.CallerType] {
		return ValidationError{Field: "caller_type", Message: fmt.Sprintf("unknown caller type %q", req.CallerType)}
	}
	if req.NearbyCallCount < 0 {
		return ValidationError{Field: "nearby_call_count", Message: "must be non-negative"}
	}
	if req.AreaHistoricalRisk < 0 || req.AreaHistoricalRisk > 10 {
		return ValidationError{Field: "area_historical_risk", Message: "must be between 0 and 10"}
	}
	if req.ReportedAtHour != nil && (*req.ReportedAtHour < 0 || *req.ReportedAtHour > 23) {
		return ValidationError{Field: "reported_at_hour", Message: "must be between 0 and 23"}
	}
	if req.Location != nil {
		if req.Location.Latitude < -90 || req.Location.Latitude > 90 {
			return ValidationError{Field: "location.latitude", Message: "must be between -90 and 90"}
		}
		if req.Location.Longitude < -180 || req.Location.Longitude > 180 {
			return ValidationError{Field: "location.longitude", Message: "must be between -180 and 180"}
		}
	}
	return nil
}

// ValidateRegisterLocationRequest checks a crowd location registration payload.
func ValidateRegisterLocationRequest(req *RegisterLocationRequest) error {
	if req.LocationID == "" {
		return ValidationError{Field: "location_id", Message: "is required"}
	}
	if req.Name == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if req.AreaSqm <= 0 {
		return ValidationError{Field: "area_sqm", Message: "must be positive"}
	}
	return nil
}
