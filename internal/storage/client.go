// Package storage implements the Elasticsearch-backed persistence layer:
// the five incident indices, the user index, and the emergency contact
// index.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/citysafe/safewatch/internal/config"
	"github.com/citysafe/safewatch/internal/logging"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// NewClient creates an Elasticsearch client and verifies the connection.
func NewClient(ctx context.Context, cfg config.ElasticsearchConfig, log logging.Logger) (*es.Client, error) {
	clientConfig := es.Config{
		Addresses:  []string{normalizeURL(cfg.URL)},
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect to elasticsearch: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.String())
	}

	log.Info("Elasticsearch connection established", logging.String("url", cfg.URL))
	return client, nil
}

// normalizeURL adds an http:// prefix if the URL carries no scheme.
func normalizeURL(url string) string {
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}
