package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"github.com/citysafe/safewatch/internal/domain"
)

// UserStore persists dashboard accounts.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ESUserStore is the Elasticsearch-backed user store.
type ESUserStore struct {
	client *es.Client
	index  string
}

// NewUserStore creates a user store over the given client.
func NewUserStore(client *es.Client, prefix string) *ESUserStore {
	return &ESUserStore{client: client, index: prefix + "_users"}
}

// userDocument is the index representation of a user. The domain type
// never serializes its password hash, so the document carries it
// explicitly.
type userDocument struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (d *userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &domain.User{
		ID:           id,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

// Create indexes a new user. The write waits for a refresh so the account
// is immediately visible to login.
func (s *ESUserStore) Create(ctx context.Context, user *domain.User) error {
	doc := userDocument{
		ID:           user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		&buf,
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(doc.ID),
		s.client.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("index user: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index user failed: %s: %s", res.Status(), detail)
	}
	return nil
}

// GetByUsername finds a user by exact username.
func (s *ESUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findOne(ctx, "username.keyword", username)
}

// GetByEmail finds a user by exact email.
func (s *ESUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, "email.keyword", email)
}

func (s *ESUserStore) findOne(ctx context.Context, field, value string) (*domain.User, error) {
	body := map[string]any{
		"query": map[string]any{
			"term": map[string]any{field: value},
		},
		"size": 1,
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
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		// A missing index means no users exist yet.
		if res.StatusCode == 404 {
			return nil, ErrNotFound
		}
		detail, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search users failed: %s: %s", res.Status(), detail)
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source userDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	if len(envelope.Hits.Hits) == 0 {
		return nil, ErrNotFound
	}
	return envelope.Hits.Hits[0].Source.toDomain()
}
