package analysis

import (
	"math"
	"sort"

	"github.com/citysafe/safewatch/internal/domain"
)

// Category weights for the composite score. Fixed, and they sum to 1.0.
var categoryWeights = map[domain.Category]float64{
	domain.CategoryHomicide:      0.30,
	domain.CategoryShooting:      0.25,
	domain.CategoryPedestrianKSI: 0.15,
	domain.CategoryBreakAndEnter: 0.15,
	domain.CategoryFatalAccident: 0.15,
}

// Risk tier thresholds, evaluated high to low. Each tier carries a fixed
// display color that is part of the output contract.
var riskTiers = []struct {
	Min   int
	Level string
	Color string
}{
	{80, "Very High", "#d32f2f"},
	{60, "High", "#f44336"},
	{40, "Moderate", "#ff9800"},
	{20, "Low", "#4caf50"},
	{0, "Very Low", "#2e7d32"},
}

// riskLevel maps a composite score to its tier label and color.
func riskLevel(score int) (string, string) {
	for _, tier := range riskTiers {
		if score >= tier.Min {
			return tier.Level, tier.Color
		}
	}
	// Unreachable: the last tier has Min 0 and scores are clamped to [0,100].
	last := riskTiers[len(riskTiers)-1]
	return last.Level, last.Color
}

// normalizedScore scales a count against the category maximum onto [0,100].
// A zero maximum (no area has any incidents of the category) defines the
// score as 0 rather than dividing by zero.
func normalizedScore(count, max int) float64 {
	if max == 0 {
		return 0
	}
	return math.Min(float64(count)/float64(max)*100, 100)
}

// clampScore bounds a rounded composite score to [0,100].
func clampScore(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}

// ScoreProfiles converts an aggregation into the ordered list of per-area
// risk profiles. Because normalization needs the global per-category maxima,
// a single area can never be scored in isolation - the whole aggregation is
// processed in one pass. Output is sorted descending by composite score;
// ties keep aggregation insertion order (stable sort).
func ScoreProfiles(agg *Aggregation, horizonMonths int) []domain.RiskProfile {
	maxima := agg.CategoryMaxima()

	profiles := make([]domain.RiskProfile, 0, len(agg.Areas))
	for _, area := range agg.Areas {
		profiles = append(profiles, scoreArea(agg.Stats[area], maxima, horizonMonths))
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].RiskScore > profiles[j].RiskScore
	})
	return profiles
}

// scoreArea builds one area's profile: weighted composite score, tier,
// per-category counts, trends, forecasts, and the unweighted sub-scores.
func scoreArea(stats *AreaStats, maxima map[domain.Category]int, horizonMonths int) domain.RiskProfile {
	var composite float64
	var trendSum float64
	var profile domain.RiskProfile
	subScores := make(map[domain.Category]float64, len(domain.Categories))

	for _, cat := range domain.Categories {
		records := stats.Records[cat]
		normalized := normalizedScore(len(records), maxima[cat])
		subScores[cat] = normalized
		composite += normalized * categoryWeights[cat]

		trend := Trend(records)
		trendSum += trend

		profile.Incidents.Set(cat, len(records))
		profile.Trends.Set(cat, int(math.Round(trend)))
		profile.Predictions.Set(cat, Forecast(records, horizonMonths))
	}

	profile.Neighbourhood = stats.Area
	profile.Incidents.Total = stats.Total
	profile.RiskScore = clampScore(composite)
	profile.RiskLevel, profile.RiskColor = riskLevel(profile.RiskScore)
	profile.OverallTrend = int(math.Round(trendSum / float64(len(domain.Categories))))
	profile.Details = domain.ScoreDetails{
		HomicideScore:      int(math.Round(subScores[domain.CategoryHomicide])),
		ShootingScore:      int(math.Round(subScores[domain.CategoryShooting])),
		PedestrianScore:    int(math.Round(subScores[domain.CategoryPedestrianKSI])),
		BreakAndEnterScore: int(math.Round(subScores[domain.CategoryBreakAndEnter])),
		FatalAccidentScore: int(math.Round(subScores[domain.CategoryFatalAccident])),
	}
	return profile
}
