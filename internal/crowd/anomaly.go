package crowd

import (
	"fmt"
	"math"

	"github.com/RESPONDR/respondr/internal/models"
)

// anomalyWindow is the fixed trailing window the detector compares against.
// Older history is kept for queries but never enters the statistics.
const anomalyWindow = 5

// Sigma multipliers for the anomaly bands.
const (
	rapidSigma    = 2.5
	moderateSigma = 1.5
)

// Anomaly is the detector's verdict for one observation.
type Anomaly struct {
	IsAnomalous bool                   `json:"is_anomalous"`
	Type        models.AnomalyType     `json:"type,omitempty"`
	Severity    models.AnomalySeverity `json:"severity,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Reason      string                 `json:"reason,omitempty"` // set when detection could not run
}

// DetectAnomaly compares the current count against the mean and standard
// deviation of the most recent window of past counts. Fewer than five
// history points is a normal "insufficient data" result, not an error.
// Increase detection is checked before decrease detection, so at most one
// anomaly type is ever reported per observation.
func DetectAnomaly(current int, history []int) Anomaly {
	if len(history) < anomalyWindow {
		return Anomaly{Reason: "insufficient data"}
	}

	recent := history[len(history)-anomalyWindow:]
	mean, std := meanStd(recent)
	value := float64(current)

	switch {
	case value > mean+rapidSigma*std:
		return Anomaly{
			IsAnomalous: true,
			Type:        models.AnomalyRapidIncrease,
			Severity:    models.AnomalySeverityHigh,
			Message:     changeMessage("increased", value, mean),
		}
	case value > mean+moderateSigma*std:
		return Anomaly{
			IsAnomalous: true,
			Type:        models.AnomalyModerateIncrease,
			Severity:    models.AnomalySeverityMedium,
			Message:     changeMessage("increased", value, mean),
		}
	case value < mean-rapidSigma*std:
		return Anomaly{
			IsAnomalous: true,
			Type:        models.AnomalyRapidDecrease,
			Severity:    models.AnomalySeverityHigh,
			Message:     changeMessage("decreased", value, mean),
		}
	default:
		return Anomaly{}
	}
}

// meanStd computes the mean and population standard deviation of counts.
func meanStd(counts []int) (float64, float64) {
	total := 0.0
	for _, c := range counts {
		total += float64(c)
	}
	mean := total / float64(len(counts))

	variance := 0.0
	for _, c := range counts {
		diff := float64(c) - mean
		variance += diff * diff
	}
	variance /= float64(len(counts))

	return mean, math.Sqrt(variance)
}

func changeMessage(direction string, current, mean float64) string {
	if mean <= 0 {
		return fmt.Sprintf("crowd %s to %.0f from a near-empty baseline", direction, current)
	}
	pct := math.Abs(current/mean-1) * 100
	return fmt.Sprintf("crowd %s by %.1f%% against recent average %.0f", direction, pct, mean)
}
