// Package domain defines the core types shared across the safewatch service.
package domain

// Category identifies one of the five incident datasets.
type Category string

// Incident categories. The string values match the dataset keys used by the
// map front-end and the prediction API.
const (
	CategoryFatalAccident Category = "fatalAccidents"
	CategoryShooting      Category = "shootingIncidents"
	CategoryHomicide      Category = "homicides"
	CategoryBreakAndEnter Category = "breakAndEnterIncidents"
	CategoryPedestrianKSI Category = "pedestrianKSI"
)

// Categories lists all incident categories in canonical order. The order is
// load-bearing for the synthetic prediction variant, which derives a category
// index from a category's position in this list.
var Categories = []Category{
	CategoryFatalAccident,
	CategoryShooting,
	CategoryHomicide,
	CategoryBreakAndEnter,
	CategoryPedestrianKSI,
}

// Label returns the human-readable label for a category.
func (c Category) Label() string {
	switch c {
	case CategoryFatalAccident:
		return "Fatal Accident"
	case CategoryShooting:
		return "Shooting Incident"
	case CategoryHomicide:
		return "Homicide"
	case CategoryBreakAndEnter:
		return "Break and Enter Incident"
	case CategoryPedestrianKSI:
		return "Pedestrian Collision"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Index returns the 1-based position of c in Categories, or 0 for an unknown
// category.
func (c Category) Index() int {
	for i, known := range Categories {
		if c == known {
			return i + 1
		}
	}
	return 0
}

// UnknownArea is the bucket for records with no usable area reference.
const UnknownArea = "Unknown"

// Incident is one record from any of the five datasets. The five source
// collections use overlapping but inconsistent column sets (DATE vs OCC_DATE,
// DISTRICT vs DIVISION vs NEIGHBOURHOOD_158), so a single flat type carries
// the union and the accessors below reconcile the differences.
type Incident struct {
	ID            string   `json:"id"`
	EventUniqueID string   `json:"event_unique_id,omitempty"`
	Category      Category `json:"category"`

	// Date is the raw collision date string (fatal accidents, pedestrian KSI).
	// OccDate is the raw occurrence date string (shootings, homicides, break
	// and enters). Both are loosely formatted; only dates.Normalize may
	// interpret them.
	Date    string `json:"date,omitempty"`
	OccDate string `json:"occ_date,omitempty"`

	// Time is the collision time string (fatal accidents, "HH:MM" prefixed).
	// OccHour is the occurrence hour (break and enters, "0" through "23").
	Time    string `json:"time,omitempty"`
	OccHour string `json:"occ_hour,omitempty"`

	Division      string `json:"division,omitempty"`
	District      string `json:"district,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`

	Street1      string  `json:"street1,omitempty"`
	Street2      string  `json:"street2,omitempty"`
	PremisesType string  `json:"premises_type,omitempty"`
	Offence      string  `json:"offence,omitempty"`
	Injury       string  `json:"injury,omitempty"`
	Death        string  `json:"death,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
}

// DateField returns the raw date string appropriate for the incident's
// category: DATE for fatal accidents and pedestrian KSI, OCC_DATE for the
// rest. Records ingested with only the other field populated still yield a
// usable value.
func (in *Incident) DateField() string {
	switch in.Category {
	case CategoryFatalAccident, CategoryPedestrianKSI:
		if in.Date != "" {
			return in.Date
		}
		return in.OccDate
	default:
		if in.OccDate != "" {
			return in.OccDate
		}
		return in.Date
	}
}

// AreaKey returns the bucketing key for the incident. Neighbourhood is
// preferred; division and district are fallbacks. Records are never dropped
// for a missing area - they land in the UnknownArea bucket.
func (in *Incident) AreaKey() string {
	if in.Neighbourhood != "" {
		return in.Neighbourhood
	}
	if in.Division != "" {
		return in.Division
	}
	if in.District != "" {
		return in.District
	}
	return UnknownArea
}

// Dataset holds the five ordered category lists for one analysis pass. All
// five lists must be present (possibly empty) before aggregation begins.
type Dataset struct {
	FatalAccidents  []Incident `json:"fatalAccidents"`
	Shootings       []Incident `json:"shootingIncidents"`
	Homicides       []Incident `json:"homicides"`
	BreakAndEnters  []Incident `json:"breakAndEnterIncidents"`
	PedestrianKSIs  []Incident `json:"pedestrianKSI"`
}

// ByCategory returns the list for the given category. Unknown categories
// return nil.
func (d *Dataset) ByCategory(c Category) []Incident {
	switch c {
	case CategoryFatalAccident:
		return d.FatalAccidents
	case CategoryShooting:
		return d.Shootings
	case CategoryHomicide:
		return d.Homicides
	case CategoryBreakAndEnter:
		return d.BreakAndEnters
	case CategoryPedestrianKSI:
		return d.PedestrianKSIs
	default:
		return nil
	}
}

// SetCategory replaces the list for the given category.
func (d *Dataset) SetCategory(c Category, records []Incident) {
	switch c {
	case CategoryFatalAccident:
		d.FatalAccidents = records
	case CategoryShooting:
		d.Shootings = records
	case CategoryHomicide:
		d.Homicides = records
	case CategoryBreakAndEnter:
		d.BreakAndEnters = records
	case CategoryPedestrianKSI:
		d.PedestrianKSIs = records
	}
}

// Total returns the record count across all five categories.
func (d *Dataset) Total() int {
	return len(d.FatalAccidents) + len(d.Shootings) + len(d.Homicides) +
		len(d.BreakAndEnters) + len(d.PedestrianKSIs)
}
