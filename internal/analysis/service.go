package analysis

import (
	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
	"github.com/citysafe/safewatch/internal/metrics"
)

// Service runs full safety analysis passes over in-memory datasets. Each
// call is independent and side-effect free aside from the returned profiles;
// identical inputs produce identical output, which the cache layer relies
// on.
type Service struct {
	horizonMonths int
	logger        logging.Logger
	metrics       *metrics.Engine
}

// NewService creates an analysis service. A zero horizon falls back to the
// default three-month projection.
func NewService(horizonMonths int, log logging.Logger, m *metrics.Engine) *Service {
	if horizonMonths <= 0 {
		horizonMonths = DefaultForecastMonths
	}
	return &Service{horizonMonths: horizonMonths, logger: log, metrics: m}
}

// Analyze aggregates the dataset by neighbourhood and scores every area.
// The returned profiles are sorted descending by risk score. An empty
// dataset yields an empty slice, not an error - zero areas is a valid
// outcome the callers must render as "no data".
func (s *Service) Analyze(ds *domain.Dataset) []domain.RiskProfile {
	agg := Aggregate(ds)
	profiles := ScoreProfiles(agg, s.horizonMonths)

	if s.metrics != nil {
		s.metrics.AnalysesTotal.Inc()
		s.metrics.AreasScored.Observe(float64(len(profiles)))
	}
	s.logger.Info("Safety analysis completed",
		logging.Int("records", ds.Total()),
		logging.Int("areas", len(profiles)),
		logging.Int("horizon_months", s.horizonMonths),
	)
	return profiles
}
