package crowd

import (
	"math"
	"testing"

	"github.com/RESPONDR/respondr/internal/models"
)

func TestClassify_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		areaSqm  float64
		wantTier models.DensityTier
		wantRisk models.RiskLevel
	}{
		{"empty plaza", 0, 1000, models.DensityLow, models.RiskSafe},
		{"sparse", 200, 1000, models.DensityLow, models.RiskSafe},
		{"moderate", 1000, 1000, models.DensityModerate, models.RiskModerate},
		{"dense", 2000, 1000, models.DensityHigh, models.RiskHigh},
		{"crush risk", 4000, 1000, models.DensityCritical, models.RiskCritical},
		{"extreme", 10000, 1000, models.DensityCritical, models.RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.count, tt.areaSqm)
			if c.Tier != tt.wantTier {
				t.Errorf("tier = %v, want %v", c.Tier, tt.wantTier)
			}
			if c.RiskLevel != tt.wantRisk {
				t.Errorf("risk = %v, want %v", c.RiskLevel, tt.wantRisk)
			}
			if c.Score < 0 || c.Score > 1 {
				t.Errorf("score out of range: %v", c.Score)
			}
		})
	}
}

func TestClassify_ScoreContinuousAtTierBoundary(t *testing.T) {
	// 249/500 = 0.498 p/sqm sits just under the low ceiling, 250/500 = 0.5
	// starts the moderate band; the score must not jump between them.
	below := Classify(249, 500)
	at := Classify(250, 500)

	if below.Tier != models.DensityLow || at.Tier != models.DensityModerate {
		t.Fatalf("unexpected tiers: %v / %v", below.Tier, at.Tier)
	}
	if math.Abs(at.Score-below.Score) > 0.01 {
		t.Errorf("score jumped at tier boundary: %v -> %v", below.Score, at.Score)
	}
	if math.Abs(at.Score-0.3) > 1e-9 {
		t.Errorf("score at moderate boundary = %v, want 0.3", at.Score)
	}
}

func TestClassify_ScoreMonotonic(t *testing.T) {
	prev := -1.0
	for count := 0; count <= 7000; count += 50 {
		score := Classify(count, 1000).Score
		if score < prev {
			t.Fatalf("score decreased at count %d: %v -> %v", count, prev, score)
		}
		prev = score
	}
}

func TestClassify_ScoreSaturates(t *testing.T) {
	// Density 6.0 p/sqm and beyond both pin the score at 1.0.
	if score := Classify(6000, 1000).Score; score != 1.0 {
		t.Errorf("score at saturation density = %v, want 1.0", score)
	}
	if score := Classify(60000, 1000).Score; score != 1.0 {
		t.Errorf("score beyond saturation = %v, want 1.0", score)
	}
}

func TestClassify_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		areaSqm float64
	}{
		{"zero area", 100, 0},
		{"negative area", 100, -5},
		{"NaN area", 100, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.count, tt.areaSqm)
			if c.Tier != models.DensityLow || c.RiskLevel != models.RiskSafe {
				t.Errorf("expected lowest classification, got tier=%v risk=%v", c.Tier, c.RiskLevel)
			}
			if c.Score != 0 {
				t.Errorf("score = %v, want 0", c.Score)
			}
		})
	}

	t.Run("negative count", func(t *testing.T) {
		c := Classify(-10, 1000)
		if c.Density != 0 || c.Score != 0 {
			t.Errorf("negative count should classify as empty, got %+v", c)
		}
	})
}
