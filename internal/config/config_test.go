package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
auth:
  jwt_secret: test-secret
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Service.Name != "safewatch" {
		t.Errorf("Service.Name = %q, want safewatch", cfg.Service.Name)
	}
	if cfg.Service.Port != 8080 {
		t.Errorf("Service.Port = %d, want 8080", cfg.Service.Port)
	}
	if cfg.Elasticsearch.URL != "http://localhost:9200" {
		t.Errorf("Elasticsearch.URL = %q", cfg.Elasticsearch.URL)
	}
	if cfg.Elasticsearch.IndexPrefix != "safewatch" {
		t.Errorf("Elasticsearch.IndexPrefix = %q", cfg.Elasticsearch.IndexPrefix)
	}
	if cfg.Redis.CacheTTL != 10*time.Minute {
		t.Errorf("Redis.CacheTTL = %v, want 10m", cfg.Redis.CacheTTL)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Analysis.ForecastMonths != 3 {
		t.Errorf("Analysis.ForecastMonths = %d, want 3", cfg.Analysis.ForecastMonths)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadYAMLValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
service:
  port: 9090
elasticsearch:
  url: http://es:9200
  timeout: 10s
redis:
  cache_ttl: 5m
auth:
  jwt_secret: test-secret
  token_ttl: 1h
analysis:
  forecast_months: 6
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Service.Port != 9090 {
		t.Errorf("Service.Port = %d, want 9090", cfg.Service.Port)
	}
	if cfg.Elasticsearch.URL != "http://es:9200" {
		t.Errorf("Elasticsearch.URL = %q", cfg.Elasticsearch.URL)
	}
	if cfg.Elasticsearch.Timeout != 10*time.Second {
		t.Errorf("Elasticsearch.Timeout = %v", cfg.Elasticsearch.Timeout)
	}
	if cfg.Redis.CacheTTL != 5*time.Minute {
		t.Errorf("Redis.CacheTTL = %v", cfg.Redis.CacheTTL)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("Auth.TokenTTL = %v", cfg.Auth.TokenTTL)
	}
	if cfg.Analysis.ForecastMonths != 6 {
		t.Errorf("Analysis.ForecastMonths = %d", cfg.Analysis.ForecastMonths)
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("SAFEWATCH_PORT", "7070")
	t.Setenv("ELASTICSEARCH_URL", "http://override:9200")
	t.Setenv("AUTH_JWT_SECRET", "env-secret")
	t.Setenv("APP_DEBUG", "yes")

	cfg, err := Load(writeConfig(t, `
service:
  port: 9090
auth:
  jwt_secret: file-secret
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Service.Port != 7070 {
		t.Errorf("Service.Port = %d, want 7070", cfg.Service.Port)
	}
	if cfg.Elasticsearch.URL != "http://override:9200" {
		t.Errorf("Elasticsearch.URL = %q", cfg.Elasticsearch.URL)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("Auth.JWTSecret = %q, want env-secret", cfg.Auth.JWTSecret)
	}
	if !cfg.Service.Debug {
		t.Error("Service.Debug = false, want true")
	}
}

func TestLoadMissingJWTSecret(t *testing.T) {
	if _, err := Load(writeConfig(t, "service:\n  port: 8080\n")); err == nil {
		t.Fatal("Load() succeeded without jwt_secret")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("Load() succeeded for missing file")
	}
}
