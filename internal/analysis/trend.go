package analysis

import (
	"fmt"
	"math"

	"github.com/citysafe/safewatch/internal/dates"
	"github.com/citysafe/safewatch/internal/domain"
)

// DefaultForecastMonths is the projection horizon used by the safety
// analysis endpoint.
const DefaultForecastMonths = 3

// Trend computes the percentage change between the first and second half of
// the record list. The split is positional, not chronological: the first
// half is treated as "recent", so callers that want a true time-based trend
// must supply records sorted newest-first.
//
// An empty older half with activity in the recent half is fully new
// activity, reported as exactly 100. Fewer than two records carry no trend
// signal and report 0.
func Trend(records []domain.Incident) float64 {
	if len(records) < 2 {
		return 0
	}
	mid := len(records) / 2
	return trendFromCounts(mid, len(records)-mid)
}

// trendFromCounts computes the percentage change between the two halves. A
// zero older count with recent activity is fully new activity, defined as
// exactly 100 rather than an undefined ratio.
func trendFromCounts(recent, older int) float64 {
	if older == 0 {
		if recent == 0 {
			return 0
		}
		return 100
	}
	return float64(recent-older) / float64(older) * 100
}

// Forecast projects the expected incident count over the given horizon by
// compounding the average month-over-month growth rate onto the average
// monthly volume. Records are bucketed by calendar year-month through the
// date normalizer, using each record's category-correct date field; records
// whose dates cannot be normalized are skipped, never fatal.
//
// Fewer than two monthly buckets give no growth signal and report 0.
func Forecast(records []domain.Incident, horizonMonths int) int {
	if len(records) < 2 {
		return 0
	}

	// Month buckets keep first-seen order so growth ratios follow the
	// input sequence, mirroring how the aggregation preserves record order.
	counts := make(map[string]int)
	var order []string
	for i := range records {
		d, ok := dates.Normalize(records[i].DateField())
		if !ok {
			continue
		}
		key := fmt.Sprintf("%d-%d", d.Year, int(d.Month))
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	if len(order) < 2 {
		return 0
	}

	var total int
	for _, key := range order {
		total += counts[key]
	}
	avgMonthly := float64(total) / float64(len(order))

	// Average of consecutive month-over-month growth ratios, skipping
	// transitions with a zero denominator.
	var growthSum float64
	var growthN int
	for i := 1; i < len(order); i++ {
		prev := counts[order[i-1]]
		if prev == 0 {
			continue
		}
		cur := counts[order[i]]
		growthSum += float64(cur-prev) / float64(prev)
		growthN++
	}
	avgGrowth := 0.0
	if growthN > 0 {
		avgGrowth = growthSum / float64(growthN)
	}

	return int(math.Round(avgMonthly * math.Pow(1+avgGrowth, float64(horizonMonths))))
}
