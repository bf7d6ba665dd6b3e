package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/citysafe/safewatch/internal/dates"
	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
	"github.com/citysafe/safewatch/internal/metrics"
	"github.com/citysafe/safewatch/internal/predict"
	"github.com/citysafe/safewatch/internal/storage"
)

// PredictRequest asks for an incident likelihood at a location and date.
type PredictRequest struct {
	Date             string          `json:"date"`
	Location         string          `json:"location"`
	IncidentType     domain.Category `json:"incidentType"`
	UseLocalDataOnly bool            `json:"useLocalDataOnly"`
}

// ErrInvalidDate is returned when the request date cannot be normalized.
var ErrInvalidDate = fmt.Errorf("invalid date format")

// Predictor produces incident likelihood predictions, preferring the hosted
// model and degrading to the deterministic heuristics.
type Predictor struct {
	completer Completer
	store     storage.IncidentStore
	logger    logging.Logger
	metrics   *metrics.Engine
}

// NewPredictor creates a predictor. A nil completer forces the heuristic
// path for every request.
func NewPredictor(completer Completer, store storage.IncidentStore, log logging.Logger, m *metrics.Engine) *Predictor {
	return &Predictor{completer: completer, store: store, logger: log, metrics: m}
}

// Predict generates a prediction for the request. Local-only mode uses the
// synthetic variant without touching storage. Otherwise the model is
// prompted with a temporal summary of the relevant records; fewer than
// three relevant records, a missing model, or an unparseable model reply
// all fall back to the heuristic bundle.
func (p *Predictor) Predict(ctx context.Context, req PredictRequest) (*domain.FallbackPrediction, error) {
	normalized, ok := dates.Normalize(req.Date)
	if !ok {
		return nil, ErrInvalidDate
	}
	when := normalized.Time()

	if req.UseLocalDataOnly {
		result := predict.Synthetic(req.IncidentType, when, req.Location)
		return &result, nil
	}

	records, err := p.store.FetchCategory(ctx, req.IncidentType, storage.IncidentQuery{})
	if err != nil {
		return nil, fmt.Errorf("fetch historical records: %w", err)
	}
	relevant := filterByLocation(records, req.Location)

	p.logger.Info("Prediction request",
		logging.String("category", string(req.IncidentType)),
		logging.String("location", req.Location),
		logging.Int("relevant", len(relevant)),
		logging.Int("total", len(records)),
	)

	if p.completer == nil || len(relevant) < 3 {
		return p.fallback(req.IncidentType, when, req.Location, len(relevant)), nil
	}

	summary := buildDataSummary(req.IncidentType, relevant, len(records), req.Date, req.Location, when)
	text, err := p.completer.Complete(ctx, "", buildPredictPrompt(summary))
	if err != nil {
		p.logger.Warn("Model prediction failed, using fallback", logging.Error(err))
		return p.fallback(req.IncidentType, when, req.Location, len(relevant)), nil
	}

	var result domain.FallbackPrediction
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &result); err != nil {
		p.logger.Warn("Model prediction was not valid JSON, using fallback", logging.Error(err))
		return p.fallback(req.IncidentType, when, req.Location, len(relevant)), nil
	}
	return &result, nil
}

func (p *Predictor) fallback(cat domain.Category, when time.Time, location string, relevant int) *domain.FallbackPrediction {
	if p.metrics != nil {
		p.metrics.FallbacksTotal.Inc()
	}
	result := predict.Fallback(cat, when, location, relevant)
	return &result
}

// filterByLocation keeps records whose division, district, or neighbourhood
// matches the location, case-insensitively.
func filterByLocation(records []domain.Incident, location string) []domain.Incident {
	relevant := make([]domain.Incident, 0)
	for _, rec := range records {
		if strings.EqualFold(rec.Division, location) ||
			strings.EqualFold(rec.District, location) ||
			strings.EqualFold(rec.Neighbourhood, location) {
			relevant = append(relevant, rec)
		}
	}
	return relevant
}

var hourPrefixRe = regexp.MustCompile(`^(\d{1,2}):`)

// temporalPeaks buckets the relevant records by month, weekday, and hour,
// and returns the labels whose counts exceed 80% of each bucket's maximum.
func temporalPeaks(cat domain.Category, records []domain.Incident) (months, days []string, hours []int) {
	var monthCounts [12]int
	var dowCounts [7]int
	var hourCounts [24]int

	for i := range records {
		rec := &records[i]
		d, ok := dates.Normalize(rec.DateField())
		if !ok {
			continue
		}
		t := d.Time()
		monthCounts[int(t.Month())-1]++
		dowCounts[int(t.Weekday())]++

		switch cat {
		case domain.CategoryFatalAccident:
			if m := hourPrefixRe.FindStringSubmatch(rec.Time); m != nil {
				if h, err := strconv.Atoi(m[1]); err == nil && h >= 0 && h < 24 {
					hourCounts[h]++
				}
			}
		case domain.CategoryBreakAndEnter:
			if h, err := strconv.Atoi(rec.OccHour); err == nil && h >= 0 && h < 24 {
				hourCounts[h]++
			}
		}
	}

	months = peakLabels(monthCounts[:], func(i int) string { return time.Month(i + 1).String() })
	days = peakLabels(dowCounts[:], func(i int) string { return time.Weekday(i).String() })
	for i, count := range hourCounts {
		if aboveThreshold(count, maxCount(hourCounts[:])) {
			hours = append(hours, i)
		}
	}
	return months, days, hours
}

func maxCount(counts []int) int {
	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	return best
}

func aboveThreshold(count, max int) bool {
	return max > 0 && float64(count) > float64(max)*0.8
}

func peakLabels(counts []int, label func(int) string) []string {
	max := maxCount(counts)
	var labels []string
	for i, c := range counts {
		if aboveThreshold(c, max) {
			labels = append(labels, label(i))
		}
	}
	return labels
}

// buildDataSummary renders the historical context block of the prediction
// prompt.
func buildDataSummary(cat domain.Category, relevant []domain.Incident, total int, rawDate, location string, when time.Time) string {
	percentage := "0"
	if total > 0 {
		percentage = strconv.FormatFloat(float64(len(relevant))/float64(total)*100, 'f', 1, 64)
	}

	months, days, hours := temporalPeaks(cat, relevant)
	hourLabels := make([]string, len(hours))
	for i, h := range hours {
		hourLabels[i] = fmt.Sprintf("%d:00", h)
	}

	return fmt.Sprintf(`Historical Data Summary:
- Total incidents of type %q in the dataset: %d
- Incidents in division/location %q: %d (%s%% of total)
- Most common months for incidents: %s
- Most common days of week: %s
- Most common hours: %s

Target prediction:
- Date: %s (%s, %s)
- Location: %s
- Incident type: %s`,
		cat, total,
		location, len(relevant), percentage,
		orNotEnoughData(months),
		orNotEnoughData(days),
		orNotEnoughData(hourLabels),
		rawDate, when.Month(), when.Weekday(),
		location, cat)
}

func orNotEnoughData(labels []string) string {
	if len(labels) == 0 {
		return "Not enough data"
	}
	return strings.Join(labels, ", ")
}

func buildPredictPrompt(summary string) string {
	return fmt.Sprintf(`You are an advanced AI safety prediction model for the city of Toronto. Based on historical incident data, you need to predict the likelihood of a specific incident occurring at a given location and date.

%s

Analyze this data and provide:
1. A clear prediction on the likelihood of this incident occurring (as a percentage)
2. Key risk factors that influence this prediction
3. A confidence score for your prediction (0-100%%)
4. A brief explanation of similar historical incidents

Format your response as a JSON object with these fields:
{
  "prediction": "A clear textual explanation of your prediction",
  "probability": 0,
  "confidence": 0,
  "riskFactors": ["factor1", "factor2", "factor3"],
  "similarIncidents": "Brief description of similar historical patterns"
}
Respond with the JSON object only.`, summary)
}
