package storage

import (
	"testing"

	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
)

func TestIndexNames(t *testing.T) {
	store := NewIncidentStore(nil, "safewatch", 0, logging.Nop())

	tests := []struct {
		cat  domain.Category
		want string
	}{
		{domain.CategoryFatalAccident, "safewatch_fatal_accidents"},
		{domain.CategoryShooting, "safewatch_shooting_incidents"},
		{domain.CategoryHomicide, "safewatch_homicides"},
		{domain.CategoryBreakAndEnter, "safewatch_break_and_enter_incidents"},
		{domain.CategoryPedestrianKSI, "safewatch_pedestrian_ksi"},
	}
	for _, tt := range tests {
		if got := store.Index(tt.cat); got != tt.want {
			t.Errorf("Index(%s) = %q, want %q", tt.cat, got, tt.want)
		}
	}
}

func TestBuildIncidentQueryMatchAll(t *testing.T) {
	q := buildIncidentQuery(IncidentQuery{})
	if _, ok := q["match_all"]; !ok {
		t.Errorf("query = %v, want match_all", q)
	}
}

func TestBuildIncidentQueryLocation(t *testing.T) {
	q := buildIncidentQuery(IncidentQuery{Location: "D14"})

	boolQuery, ok := q["bool"].(map[string]any)
	if !ok {
		t.Fatalf("query = %v, want bool", q)
	}
	should, ok := boolQuery["should"].([]any)
	if !ok || len(should) != 3 {
		t.Fatalf("should = %v, want 3 term clauses", boolQuery["should"])
	}
	if boolQuery["minimum_should_match"] != 1 {
		t.Errorf("minimum_should_match = %v, want 1", boolQuery["minimum_should_match"])
	}
}
