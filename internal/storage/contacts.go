package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/citysafe/safewatch/internal/domain"
)

// ContactStore persists emergency support contacts.
type ContactStore interface {
	ListActive(ctx context.Context) ([]domain.EmergencyContact, error)
	Create(ctx context.Context, contact *domain.EmergencyContact) error
}

// ESContactStore is the Elasticsearch-backed contact store.
type ESContactStore struct {
	client *es.Client
	index  string
}

// NewContactStore creates a contact store over the given client.
func NewContactStore(client *es.Client, prefix string) *ESContactStore {
	return &ESContactStore{client: client, index: prefix + "_emergency_contacts"}
}

// ListActive returns all active contacts, sorted by name.
func (s *ESContactStore) ListActive(ctx context.Context) ([]domain.EmergencyContact, error) {
	body := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"is_active": true},
		},
		"sort": []any{
			map[string]any{"name.keyword": map[string]any{"order": "asc"}},
		},
		"size": 500,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		if res.StatusCode == 404 {
			return []domain.EmergencyContact{}, nil
		}
		detail, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search contacts failed: %s: %s", res.Status(), detail)
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source domain.EmergencyContact `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode contacts response: %w", err)
	}

	contacts := make([]domain.EmergencyContact, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		contacts = append(contacts, hit.Source)
	}
	return contacts, nil
}

// Create indexes a new contact.
func (s *ESContactStore) Create(ctx context.Context, contact *domain.EmergencyContact) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(contact); err != nil {
		return fmt.Errorf("encode contact: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		&buf,
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(contact.ID.String()),
		s.client.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("index contact: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index contact failed: %s: %s", res.Status(), detail)
	}
	return nil
}
