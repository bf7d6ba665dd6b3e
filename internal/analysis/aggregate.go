// Package analysis implements the neighbourhood risk-scoring engine: one
// synchronous pass that buckets the five incident datasets by area, derives a
// weighted composite risk score per area, and attaches trend and forecast
// figures. The engine is pure computation over in-memory lists; fetching and
// caching live elsewhere.
package analysis

import (
	"github.com/citysafe/safewatch/internal/domain"
)

// AreaStats accumulates one area's records during an aggregation pass. It is
// created when the area key is first seen, mutated by appends, and discarded
// after scoring - nothing here is persisted between passes.
type AreaStats struct {
	Area    string
	Records map[domain.Category][]domain.Incident
	Total   int
}

// Aggregation is the result of bucketing a dataset by area. Areas preserves
// first-seen insertion order, which later becomes the tiebreaker for equal
// risk scores.
type Aggregation struct {
	Areas []string
	Stats map[string]*AreaStats
}

// Aggregate buckets every record in the dataset by its area key. Records
// with no usable area land in the "Unknown" bucket; none are dropped. An
// empty dataset yields an empty aggregation, not an error.
func Aggregate(ds *domain.Dataset) *Aggregation {
	agg := &Aggregation{Stats: make(map[string]*AreaStats)}
	for _, cat := range domain.Categories {
		for _, rec := range ds.ByCategory(cat) {
			stats := agg.area(rec.AreaKey())
			stats.Records[cat] = append(stats.Records[cat], rec)
			stats.Total++
		}
	}
	return agg
}

// area returns the stats bucket for the key, creating it on first sight.
func (a *Aggregation) area(key string) *AreaStats {
	if stats, ok := a.Stats[key]; ok {
		return stats
	}
	stats := &AreaStats{
		Area:    key,
		Records: make(map[domain.Category][]domain.Incident),
	}
	a.Stats[key] = stats
	a.Areas = append(a.Areas, key)
	return stats
}

// CategoryMaxima returns, for each category, the largest per-area record
// count in this aggregation. The scorer normalizes against these so that the
// busiest area for a category lands at 100.
func (a *Aggregation) CategoryMaxima() map[domain.Category]int {
	maxima := make(map[domain.Category]int, len(domain.Categories))
	for _, cat := range domain.Categories {
		best := 0
		for _, area := range a.Areas {
			if n := len(a.Stats[area].Records[cat]); n > best {
				best = n
			}
		}
		maxima[cat] = best
	}
	return maxima
}
