package rank

import "github.com/Jawher-Sadok/VondraLink/engine/domain"

// Tier labels the quality bucket a result set was drawn from.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierAll    Tier = "all"
)

// TierConfig holds the score thresholds for quality-tier selection. The
// thresholds are tunable per call site, not fixed constants.
type TierConfig struct {
	High   float32
	Medium float32
}

// DefaultTiers returns the standard thresholds.
func DefaultTiers() TierConfig {
	return TierConfig{High: 0.5, Medium: 0.3}
}

// SelectTier picks the best available quality tier that can still satisfy
// limit: the high-score subset if it is large enough, else the medium subset,
// else the whole pool. Store order is preserved within the chosen tier, and
// a degraded (partial) result is acceptable, so this never fails.
func SelectTier(points []domain.Candidate, limit int, cfg TierConfig) ([]domain.Candidate, Tier) {
	var high, medium []domain.Candidate
	for _, p := range points {
		if p.Score >= cfg.High {
			high = append(high, p)
		}
		if p.Score >= cfg.Medium {
			medium = append(medium, p)
		}
	}

	switch {
	case len(high) >= limit:
		return high, TierHigh
	case len(medium) >= limit:
		return medium, TierMedium
	default:
		return points, TierAll
	}
}
