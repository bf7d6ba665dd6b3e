package analysis

import (
	"testing"

	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
)

func TestServiceAnalyze(t *testing.T) {
	svc := NewService(0, logging.Nop(), nil)

	ds := &domain.Dataset{
		Shootings: []domain.Incident{
			{Category: domain.CategoryShooting, Neighbourhood: "A", OccDate: "2023-01-01"},
			{Category: domain.CategoryShooting, Neighbourhood: "B", OccDate: "2023-01-02"},
			{Category: domain.CategoryShooting, Neighbourhood: "B", OccDate: "2023-01-03"},
		},
	}

	profiles := svc.Analyze(ds)
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(profiles))
	}
	if profiles[0].Neighbourhood != "B" {
		t.Errorf("top area = %q, want B", profiles[0].Neighbourhood)
	}
}

func TestServiceAnalyzeEmpty(t *testing.T) {
	svc := NewService(3, logging.Nop(), nil)
	profiles := svc.Analyze(&domain.Dataset{})
	if len(profiles) != 0 {
		t.Errorf("profiles = %d, want 0", len(profiles))
	}
}
