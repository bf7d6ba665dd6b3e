package domain

// CategoryCounts holds a per-category integer value plus the overall total.
// It is reused for raw counts, trend percentages, and forecasts, matching the
// shape the dashboard and chat layers consume.
type CategoryCounts struct {
	FatalAccidents int `json:"fatalAccidents"`
	Shootings      int `json:"shootingIncidents"`
	Homicides      int `json:"homicides"`
	BreakAndEnters int `json:"breakAndEnterIncidents"`
	PedestrianKSIs int `json:"pedestrianKSI"`
	Total          int `json:"total,omitempty"`
}

// Get returns the count for the given category.
func (cc *CategoryCounts) Get(c Category) int {
	switch c {
	case CategoryFatalAccident:
		return cc.FatalAccidents
	case CategoryShooting:
		return cc.Shootings
	case CategoryHomicide:
		return cc.Homicides
	case CategoryBreakAndEnter:
		return cc.BreakAndEnters
	case CategoryPedestrianKSI:
		return cc.PedestrianKSIs
	default:
		return 0
	}
}

// Set stores the count for the given category.
func (cc *CategoryCounts) Set(c Category, v int) {
	switch c {
	case CategoryFatalAccident:
		cc.FatalAccidents = v
	case CategoryShooting:
		cc.Shootings = v
	case CategoryHomicide:
		cc.Homicides = v
	case CategoryBreakAndEnter:
		cc.BreakAndEnters = v
	case CategoryPedestrianKSI:
		cc.PedestrianKSIs = v
	}
}

// RiskProfile is the per-area output of a safety analysis pass. Field names
// are part of the output contract: the chat layer embeds them verbatim in
// model prompts and the dashboard renders them directly.
type RiskProfile struct {
	Neighbourhood string `json:"neighbourhood"`
	RiskScore     int    `json:"riskScore"`
	RiskLevel     string `json:"riskLevel"`
	RiskColor     string `json:"riskColor"`

	Incidents   CategoryCounts `json:"incidents"`
	Trends      CategoryCounts `json:"trends"`
	Predictions CategoryCounts `json:"predictions"`

	OverallTrend int `json:"overallTrend"`

	// Details carries each category's unweighted 0-100 sub-score.
	Details ScoreDetails `json:"details"`
}

// ScoreDetails holds the unweighted per-category normalized scores.
type ScoreDetails struct {
	HomicideScore      int `json:"homicideScore"`
	ShootingScore      int `json:"shootingScore"`
	PedestrianScore    int `json:"pedestrianScore"`
	BreakAndEnterScore int `json:"breakAndEnterScore"`
	FatalAccidentScore int `json:"fatalAccidentScore"`
}

// FallbackPrediction is the heuristic prediction bundle produced when the
// aggregation path or the hosted model is unavailable. It is computed
// independently of RiskProfile from a (category, date, area) triple.
type FallbackPrediction struct {
	Prediction       string   `json:"prediction"`
	Probability      int      `json:"probability"`
	Confidence       int      `json:"confidence"`
	RiskFactors      []string `json:"riskFactors"`
	SimilarIncidents string   `json:"similarIncidents"`
	IsFallback       bool     `json:"isFallback,omitempty"`
	IsLocal          bool     `json:"isLocalPrediction,omitempty"`
}
