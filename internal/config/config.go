// Package config loads the safewatch service configuration from a YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"time"

	"github.com/citysafe/safewatch/internal/logging"
)

// Default configuration values.
const (
	defaultServiceName     = "safewatch"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8080
	defaultESURL           = "http://localhost:9200"
	defaultESMaxRetries    = 3
	defaultESTimeoutSec    = 30
	defaultESIndexPrefix   = "safewatch"
	defaultESFetchSize     = 5000
	defaultRedisURL        = "localhost:6379"
	defaultRedisTimeoutSec = 5
	defaultCacheTTLMin     = 10
	defaultForecastMonths  = 3
	defaultTokenTTLHours   = 24
	defaultBcryptCost      = 10
	defaultModel           = "claude-sonnet-4-20250514"
	defaultMaxTokens       = 1024
	defaultLogLevel        = "info"
)

// Config holds all configuration for the safewatch service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Redis         RedisConfig         `yaml:"redis"`
	Auth          AuthConfig          `yaml:"auth"`
	Assistant     AssistantConfig     `yaml:"assistant"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Logging       logging.Config      `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"SAFEWATCH_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"      yaml:"debug"`
}

// ElasticsearchConfig holds Elasticsearch configuration.
type ElasticsearchConfig struct {
	URL         string        `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username    string        `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password    string        `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	MaxRetries  int           `yaml:"max_retries"`
	Timeout     time.Duration `yaml:"timeout"`
	IndexPrefix string        `yaml:"index_prefix"`
	FetchSize   int           `yaml:"fetch_size"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	URL      string        `env:"REDIS_URL"      yaml:"url"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	Database int           `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret  string        `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// AssistantConfig holds the hosted model configuration. An empty API key
// disables the model paths; predictions then always use the heuristic
// fallback.
type AssistantConfig struct {
	APIKey    string `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model     string `env:"ANTHROPIC_MODEL"   yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// AnalysisConfig holds risk analysis settings.
type AnalysisConfig struct {
	ForecastMonths int `yaml:"forecast_months"`
}

// Load reads the YAML config at path, applies defaults, then applies
// environment variable overrides. Env always wins.
func Load(path string) (*Config, error) {
	cfg, err := loadYAML(path)
	if err != nil {
		return nil, err
	}
	setDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for fatal gaps.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (set AUTH_JWT_SECRET)")
	}
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return errors.New("service.port must be a valid TCP port")
	}
	return nil
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setRedisDefaults(&cfg.Redis)
	setAuthDefaults(&cfg.Auth)
	setAssistantDefaults(&cfg.Assistant)
	if cfg.Analysis.ForecastMonths == 0 {
		cfg.Analysis.ForecastMonths = defaultForecastMonths
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeoutSec * time.Second
	}
	if e.IndexPrefix == "" {
		e.IndexPrefix = defaultESIndexPrefix
	}
	if e.FetchSize == 0 {
		e.FetchSize = defaultESFetchSize
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.URL == "" {
		r.URL = defaultRedisURL
	}
	if r.Timeout == 0 {
		r.Timeout = defaultRedisTimeoutSec * time.Second
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = defaultCacheTTLMin * time.Minute
	}
}

func setAuthDefaults(a *AuthConfig) {
	if a.TokenTTL == 0 {
		a.TokenTTL = defaultTokenTTLHours * time.Hour
	}
	if a.BcryptCost == 0 {
		a.BcryptCost = defaultBcryptCost
	}
}

func setAssistantDefaults(a *AssistantConfig) {
	if a.Model == "" {
		a.Model = defaultModel
	}
	if a.MaxTokens == 0 {
		a.MaxTokens = defaultMaxTokens
	}
}
