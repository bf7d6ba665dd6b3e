package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	es "github.com/elastic/go-elasticsearch/v8"
	"golang.org/x/sync/errgroup"

	"github.com/citysafe/safewatch/internal/dates"
	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
)

// IncidentQuery narrows an incident fetch. The zero value fetches
// everything up to the store's fetch size.
type IncidentQuery struct {
	// Location matches against neighbourhood, division, and district.
	Location string
	// Range filters by the category-correct date field. The raw date
	// strings in the indices are too loosely formatted for a server-side
	// range clause, so the range is applied client-side after the fetch.
	Range dates.DateRange
	From  int
	Size  int
}

// IncidentStore fetches incident records for analysis and prediction.
type IncidentStore interface {
	FetchCategory(ctx context.Context, cat domain.Category, q IncidentQuery) ([]domain.Incident, error)
	FetchDataset(ctx context.Context, q IncidentQuery) (*domain.Dataset, error)
}

// ESIncidentStore is the Elasticsearch-backed incident store.
type ESIncidentStore struct {
	client    *es.Client
	prefix    string
	fetchSize int
	logger    logging.Logger
}

// NewIncidentStore creates an incident store over the given client.
func NewIncidentStore(client *es.Client, prefix string, fetchSize int, log logging.Logger) *ESIncidentStore {
	if fetchSize <= 0 {
		fetchSize = 5000
	}
	return &ESIncidentStore{client: client, prefix: prefix, fetchSize: fetchSize, logger: log}
}

// categoryIndexSuffixes maps each category to its index name suffix.
var categoryIndexSuffixes = map[domain.Category]string{
	domain.CategoryFatalAccident: "fatal_accidents",
	domain.CategoryShooting:      "shooting_incidents",
	domain.CategoryHomicide:      "homicides",
	domain.CategoryBreakAndEnter: "break_and_enter_incidents",
	domain.CategoryPedestrianKSI: "pedestrian_ksi",
}

// Index returns the index name for a category.
func (s *ESIncidentStore) Index(cat domain.Category) string {
	return s.prefix + "_" + categoryIndexSuffixes[cat]
}

// FetchCategory fetches one category's records matching the query. Date
// range filtering happens client-side against the normalized dates.
func (s *ESIncidentStore) FetchCategory(ctx context.Context, cat domain.Category, q IncidentQuery) ([]domain.Incident, error) {
	if !cat.Valid() {
		return nil, fmt.Errorf("unknown incident category %q", cat)
	}

	size := q.Size
	if size <= 0 || size > s.fetchSize {
		size = s.fetchSize
	}
	body := map[string]any{
		"query": buildIncidentQuery(q),
		"from":  q.From,
		"size":  size,
	}

	records, err := s.search(ctx, s.Index(cat), body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cat, err)
	}

	for i := range records {
		records[i].Category = cat
	}
	if q.Range.Empty() {
		return records, nil
	}

	filtered := records[:0]
	for _, rec := range records {
		if dates.InRange(rec.DateField(), q.Range) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// FetchDataset fetches all five categories concurrently. A failure in any
// category fails the whole fetch; analysis over a partial dataset would
// skew the normalization maxima.
func (s *ESIncidentStore) FetchDataset(ctx context.Context, q IncidentQuery) (*domain.Dataset, error) {
	var ds domain.Dataset
	results := make([][]domain.Incident, len(domain.Categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range domain.Categories {
		g.Go(func() error {
			records, err := s.FetchCategory(gctx, cat, q)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, cat := range domain.Categories {
		ds.SetCategory(cat, results[i])
	}
	s.logger.Debug("Fetched incident dataset", logging.Int("records", ds.Total()))
	return &ds, nil
}

// buildIncidentQuery renders the server-side part of the query. Location
// matches any of the three area fields.
func buildIncidentQuery(q IncidentQuery) map[string]any {
	if q.Location == "" {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{
		"bool": map[string]any{
			"should": []any{
				map[string]any{"term": map[string]any{"neighbourhood.keyword": q.Location}},
				map[string]any{"term": map[string]any{"division.keyword": q.Location}},
				map[string]any{"term": map[string]any{"district.keyword": q.Location}},
			},
			"minimum_should_match": 1,
		},
	}
}

// searchEnvelope is the slice of the ES search response we care about.
type searchEnvelope struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source domain.Incident `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ESIncidentStore) search(ctx context.Context, index string, body map[string]any) ([]domain.Incident, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search %s failed: %s: %s", index, res.Status(), detail)
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	records := make([]domain.Incident, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		rec := hit.Source
		if rec.ID == "" {
			rec.ID = hit.ID
		}
		records = append(records, rec)
	}
	return records, nil
}
