package crowd

import (
	"math"

	"github.com/RESPONDR/respondr/internal/models"
)

// Density tier boundaries in people per square metre.
const (
	densityLowCeiling      = 0.5
	densityModerateCeiling = 1.5
	densityHighCeiling     = 3.0
	densityScoreSaturation = 6.0 // density at which the score reaches 1.0
)

// Classification is the derived assessment for a single raw count.
type Classification struct {
	Density   float64            // people per square metre
	Score     float64            // 0-1, continuous and monotonic across tiers
	Tier      models.DensityTier // coarse classification
	RiskLevel models.RiskLevel   // derived hazard level
}

// Classify converts a raw people count over a monitored area into a density
// tier, a continuous 0-1 density score and a risk level. The score is
// piecewise-linear within each tier band (0-0.3, 0.3-0.6, 0.6-0.9, 0.9-1.0)
// so it never jumps at a tier boundary; downstream alerting thresholds on
// the score rely on that continuity. A non-positive area yields the lowest
// classification rather than an error.
func Classify(count int, areaSqm float64) Classification {
	if count < 0 {
		count = 0
	}
	if areaSqm <= 0 || math.IsNaN(areaSqm) {
		return Classification{Tier: models.DensityLow, RiskLevel: models.RiskSafe}
	}

	density := float64(count) / areaSqm

	c := Classification{Density: density}

	switch {
	case density < densityLowCeiling:
		c.Tier = models.DensityLow
		c.RiskLevel = models.RiskSafe
		c.Score = (density / densityLowCeiling) * 0.3
	case density < densityModerateCeiling:
		c.Tier = models.DensityModerate
		c.RiskLevel = models.RiskModerate
		c.Score = 0.3 + (density-densityLowCeiling)/(densityModerateCeiling-densityLowCeiling)*0.3
	case density < densityHighCeiling:
		c.Tier = models.DensityHigh
		c.RiskLevel = models.RiskHigh
		c.Score = 0.6 + (density-densityModerateCeiling)/(densityHighCeiling-densityModerateCeiling)*0.3
	default:
		c.Tier = models.DensityCritical
		c.RiskLevel = models.RiskCritical
		over := (density - densityHighCeiling) / (densityScoreSaturation - densityHighCeiling)
		c.Score = 0.9 + math.Min(over, 1.0)*0.1
	}

	return c
}
