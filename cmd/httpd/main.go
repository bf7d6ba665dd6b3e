// Command httpd runs the safewatch HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/citysafe/safewatch/internal/analysis"
	"github.com/citysafe/safewatch/internal/api"
	"github.com/citysafe/safewatch/internal/assistant"
	"github.com/citysafe/safewatch/internal/auth"
	"github.com/citysafe/safewatch/internal/cache"
	"github.com/citysafe/safewatch/internal/config"
	"github.com/citysafe/safewatch/internal/logging"
	"github.com/citysafe/safewatch/internal/metrics"
	"github.com/citysafe/safewatch/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "safewatch: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.Must(cfg.Logging)
	defer func() { _ = log.Sync() }()

	log.Info("Starting safewatch",
		logging.String("version", cfg.Service.Version),
		logging.Int("port", cfg.Service.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	esClient, err := storage.NewClient(ctx, cfg.Elasticsearch, log)
	if err != nil {
		return err
	}

	redisClient, err := cache.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		// The cache is an optimization; analysis recomputes on every
		// request without it.
		log.Warn("Redis unavailable, analysis caching disabled", logging.Error(err))
		redisClient = nil
	}

	registry := metrics.New()

	incidents := storage.NewIncidentStore(esClient, cfg.Elasticsearch.IndexPrefix, cfg.Elasticsearch.FetchSize, log)
	users := storage.NewUserStore(esClient, cfg.Elasticsearch.IndexPrefix)
	contacts := storage.NewContactStore(esClient, cfg.Elasticsearch.IndexPrefix)

	analysisSvc := analysis.NewService(cfg.Analysis.ForecastMonths, log, registry.Engine)
	analysisCache := cache.NewAnalysisCache(redisClient, cfg.Redis.CacheTTL, log, registry.Engine)
	pipeline := api.NewPipeline(incidents, analysisSvc, analysisCache)

	var completer assistant.Completer
	if cfg.Assistant.APIKey != "" {
		completer = assistant.NewAnthropicCompleter(cfg.Assistant.APIKey, cfg.Assistant.Model, cfg.Assistant.MaxTokens)
		log.Info("Model assistant enabled", logging.String("model", cfg.Assistant.Model))
	} else {
		log.Warn("No model API key configured, predictions will use the heuristic fallback")
	}

	chat := assistant.NewChatService(completer, pipeline, log)
	parser := assistant.NewQueryParser(completer, log)
	predictor := assistant.NewPredictor(completer, incidents, log, registry.Engine)

	jwtManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler := api.NewHandler(pipeline, incidents, users, contacts, chat, parser, predictor, jwtManager, cfg.Auth.BcryptCost, log)

	readyCheck := func(ctx context.Context) error {
		res, err := esClient.Info(esClient.Info.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("elasticsearch: %w", err)
		}
		defer func() { _ = res.Body.Close() }()
		if res.IsError() {
			return fmt.Errorf("elasticsearch: %s", res.Status())
		}
		return nil
	}

	server := api.NewServer(api.ServerConfig{
		Name:    cfg.Service.Name,
		Version: cfg.Service.Version,
		Port:    cfg.Service.Port,
		Debug:   cfg.Service.Debug,
	}, handler, jwtManager, registry, log, readyCheck)

	return server.Run(ctx)
}
