package crowd

import (
	"math"
	"testing"

	"github.com/RESPONDR/respondr/internal/models"
)

func TestDetectAnomaly_InsufficientData(t *testing.T) {
	histories := [][]int{
		nil,
		{},
		{100},
		{100, 100, 100, 100},
	}

	for _, history := range histories {
		anomaly := DetectAnomaly(500, history)
		if anomaly.IsAnomalous {
			t.Errorf("history of %d points should not flag", len(history))
		}
		if anomaly.Reason != "insufficient data" {
			t.Errorf("reason = %q, want insufficient data", anomaly.Reason)
		}
	}
}

func TestDetectAnomaly_Bands(t *testing.T) {
	// mean 100, population stddev ~6.32: moderate band starts above ~109.5,
	// rapid above ~115.8, rapid decrease below ~84.2
	history := []int{90, 100, 110, 100, 100}

	tests := []struct {
		name         string
		current      int
		wantType     models.AnomalyType
		wantSeverity models.AnomalySeverity
	}{
		{"steady", 105, models.AnomalyNone, ""},
		{"just outside moderate band", 112, models.AnomalyModerateIncrease, models.AnomalySeverityMedium},
		{"spike", 120, models.AnomalyRapidIncrease, models.AnomalySeverityHigh},
		{"surge", 500, models.AnomalyRapidIncrease, models.AnomalySeverityHigh},
		{"sudden dispersal", 80, models.AnomalyRapidDecrease, models.AnomalySeverityHigh},
		{"mild dip is normal", 95, models.AnomalyNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anomaly := DetectAnomaly(tt.current, history)

			if anomaly.Type != tt.wantType {
				t.Errorf("type = %q, want %q", anomaly.Type, tt.wantType)
			}
			if anomaly.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", anomaly.Severity, tt.wantSeverity)
			}
			if anomaly.IsAnomalous != (tt.wantType != models.AnomalyNone) {
				t.Errorf("is_anomalous = %v inconsistent with type %q", anomaly.IsAnomalous, anomaly.Type)
			}
			if anomaly.IsAnomalous && anomaly.Message == "" {
				t.Error("anomaly should carry a message")
			}
		})
	}
}

func TestDetectAnomaly_FlatHistoryFlagsAnyChange(t *testing.T) {
	// Zero variance: any deviation from the mean is beyond every sigma band.
	history := []int{100, 100, 100, 100, 100}

	if anomaly := DetectAnomaly(101, history); anomaly.Type != models.AnomalyRapidIncrease {
		t.Errorf("type = %q, want RAPID_INCREASE on zero-variance history", anomaly.Type)
	}
	if anomaly := DetectAnomaly(99, history); anomaly.Type != models.AnomalyRapidDecrease {
		t.Errorf("type = %q, want RAPID_DECREASE on zero-variance history", anomaly.Type)
	}
	if anomaly := DetectAnomaly(100, history); anomaly.IsAnomalous {
		t.Error("matching the flat baseline should not flag")
	}
}

func TestDetectAnomaly_UsesTrailingWindowOnly(t *testing.T) {
	// Old low counts must not influence the statistics once the trailing
	// window is full of high counts.
	history := []int{1, 1, 1, 500, 500, 500, 500, 500}

	if anomaly := DetectAnomaly(500, history); anomaly.IsAnomalous {
		t.Errorf("expected steady state against trailing window, got %+v", anomaly)
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]int{90, 100, 110, 100, 100})

	if mean != 100 {
		t.Errorf("mean = %v, want 100", mean)
	}
	if math.Abs(std-math.Sqrt(40)) > 1e-9 {
		t.Errorf("std = %v, want sqrt(40)", std)
	}
}
