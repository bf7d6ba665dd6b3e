// Package api exposes the safewatch HTTP surface: incident queries, the
// safety analysis, predictions, the chat assistant, auth, and emergency
// contacts.
package api

import (
	"context"

	"github.com/citysafe/safewatch/internal/analysis"
	"github.com/citysafe/safewatch/internal/cache"
	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/storage"
)

// Pipeline runs the fetch-analyze-cache flow behind the safety analysis
// endpoint and the chat assistant.
type Pipeline struct {
	store    storage.IncidentStore
	analysis *analysis.Service
	cache    *cache.AnalysisCache
}

// NewPipeline creates the analysis pipeline.
func NewPipeline(store storage.IncidentStore, svc *analysis.Service, analysisCache *cache.AnalysisCache) *Pipeline {
	return &Pipeline{store: store, analysis: svc, cache: analysisCache}
}

// Profiles returns the current risk profiles, from cache when fresh. A
// cache miss triggers a full fetch and analysis pass; the result is cached
// best-effort.
func (p *Pipeline) Profiles(ctx context.Context) ([]domain.RiskProfile, error) {
	if profiles, ok := p.cache.Get(ctx); ok {
		return profiles, nil
	}

	ds, err := p.store.FetchDataset(ctx, storage.IncidentQuery{})
	if err != nil {
		return nil, err
	}

	profiles := p.analysis.Analyze(ds)
	p.cache.Set(ctx, profiles)
	return profiles, nil
}
