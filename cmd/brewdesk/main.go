package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/brewdesk/internal/config"
	dbRedis "github.com/kailas-cloud/brewdesk/internal/db/redis"
	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
	logpkg "github.com/kailas-cloud/brewdesk/internal/logger"
	"github.com/kailas-cloud/brewdesk/internal/metrics"
	"github.com/kailas-cloud/brewdesk/internal/repository/corpus"
	"github.com/kailas-cloud/brewdesk/internal/repository/embcache"
	outletrepo "github.com/kailas-cloud/brewdesk/internal/repository/outlet"
	chiTransport "github.com/kailas-cloud/brewdesk/internal/transport/chi"
	geminiGen "github.com/kailas-cloud/brewdesk/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/brewdesk/internal/transport/openai"
	answeruc "github.com/kailas-cloud/brewdesk/internal/usecase/answer"
	"github.com/kailas-cloud/brewdesk/internal/usecase/compose"
	embeddinguc "github.com/kailas-cloud/brewdesk/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/brewdesk/internal/usecase/health"
	"github.com/kailas-cloud/brewdesk/internal/usecase/retrieval"
	"github.com/kailas-cloud/brewdesk/internal/usecase/route"
	"github.com/kailas-cloud/brewdesk/internal/usecase/translate"
	"github.com/kailas-cloud/brewdesk/internal/version"
)

func main() {
	// Secrets may come from a local .env; a missing file is fine.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting brewdesk API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache", cfg.Cache.Enabled()),
		zap.String("generation_provider", cfg.Generation.Provider),
		zap.String("outlet_driver", cfg.Outlets.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()
	metrics.RegisterHTTPMetrics()

	ctx := context.Background()

	// Optional embedding cache
	var cache *dbRedis.Store
	if cfg.Cache.Enabled() {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := cache.WaitForReady(ctx, timeout); err != nil {
			logger.Fatal("Cache not ready", zap.String("driver", cfg.Cache.Driver), zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	embedder := buildEmbedder(cfg.Embedding, cfg.Cache, cache, logger)

	// Product corpus and index: any dimension disagreement is fatal here, never per request.
	snap, err := corpus.Load(cfg.Products.Source, cfg.Products.Path)
	if err != nil {
		logger.Fatal("Failed to load product corpus", zap.String("path", cfg.Products.Path), zap.Error(err))
	}
	if err := snap.CheckCompatible(cfg.Embedding.Model, cfg.Embedding.Dimensions); err != nil {
		logger.Fatal("Product corpus incompatible with query embedder", zap.Error(err))
	}
	index, err := retrieval.New(snap.Chunks, embedder, cfg.Embedding.Dimensions)
	if err != nil {
		logger.Fatal("Failed to build product index", zap.Error(err))
	}
	logger.Info("Product index ready",
		zap.Int("chunks", index.Len()),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", index.Dimensions()),
	)

	// Outlet store and translator share one allow-list.
	schema := query.DefaultSchema().WithVersion(cfg.Outlets.SchemaVersion)
	loc, err := time.LoadLocation(cfg.Outlets.Timezone)
	if err != nil {
		logger.Fatal("Invalid outlet timezone", zap.Error(err))
	}
	translator, err := translate.New(schema, translate.WithLocation(loc))
	if err != nil {
		logger.Fatal("Outlet schema not supported", zap.Error(err))
	}

	outlets, err := outletrepo.Open(ctx, outletrepo.Config{
		Driver:          cfg.Outlets.Driver,
		DSN:             cfg.Outlets.DSN,
		SeedFile:        cfg.Outlets.SeedFile,
		MaxOpenConns:    cfg.Outlets.MaxOpenConns,
		MaxIdleConns:    cfg.Outlets.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Outlets.ConnMaxLifetimeSec) * time.Second,
	}, schema, logger)
	if err != nil {
		logger.Fatal("Failed to open outlet store", zap.Error(err))
	}
	defer func() { _ = outlets.Close() }()
	logger.Info("Outlet store ready", zap.String("driver", cfg.Outlets.Driver), zap.String("schema", schema.Version()))

	generator, err := buildGenerator(ctx, cfg.Generation, logger)
	if err != nil {
		logger.Fatal("Failed to create generator", zap.Error(err))
	}

	composer := compose.New(generator, cfg.Generation.Provider, compose.Config{
		ContextBudget:  cfg.Pipeline.ContextBudget,
		Timeout:        cfg.Generation.Timeout(),
		RetryOnce:      !cfg.Generation.DisableRetry,
		SystemPrompt:   cfg.Generation.SystemPrompt,
		MaxRecentTurns: cfg.Pipeline.MaxRecentTurns,
	})

	answers := answeruc.New(route.New(), index, translator, outlets, schema, composer, answeruc.Config{
		BranchTimeout: cfg.Pipeline.BranchTimeout(),
		EvidenceK:     cfg.Pipeline.EvidenceK,
		MinScore:      cfg.Products.MinScore,
	})

	// Health: the outlet store is required; providers and cache only degrade.
	health := healthuc.New().
		Require("outlets", healthuc.PingCheck(outlets)).
		Optional("embedding", embedder).
		Optional("generation", healthChecker(generator))
	if cache != nil {
		health = health.Optional("cache", healthuc.PingCheck(cache))
	}

	server := chiTransport.NewServer(answers, health, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// queryEmbedder is the decorated embedder handed to the index.
type queryEmbedder interface {
	domain.Embedder
	domain.HealthChecker
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Query
func buildEmbedder(
	embCfg config.EmbeddingConfig,
	cacheCfg config.CacheConfig,
	cache *dbRedis.Store,
	logger *zap.Logger,
) queryEmbedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     embCfg.APIKey,
		BaseURL:    embCfg.BaseURL,
		Model:      embCfg.Model,
		Dimensions: embCfg.Dimensions,
		Provider:   embCfg.Provider,
		Logger:     logger,
	})

	var embedder queryEmbedder = base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Options{
			Model:      embCfg.Model,
			TTL:        cacheCfg.TTL(),
			Dimensions: embCfg.Dimensions,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, embCfg.Provider, embCfg.Model, logger)

	// Outermost, so the cache key sees the normalized text and the instruction.
	return domain.NewQueryEmbedder(embedder, embCfg.QueryInstruction)
}

// buildGenerator returns nil for provider "none": every answer then uses the evidence fallback.
func buildGenerator(ctx context.Context, genCfg config.GenerationConfig, logger *zap.Logger) (compose.Generator, error) {
	switch genCfg.Provider {
	case "openai":
		return openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:      genCfg.APIKey,
			BaseURL:     genCfg.BaseURL,
			Model:       genCfg.Model,
			Temperature: genCfg.Temperature,
			MaxTokens:   genCfg.MaxTokens,
			Provider:    genCfg.Provider,
			Logger:      logger,
		}), nil
	case "gemini":
		g, err := geminiGen.NewGenerator(ctx, &geminiGen.Config{
			APIKey:      genCfg.APIKey,
			Model:       genCfg.Model,
			Temperature: genCfg.Temperature,
			MaxTokens:   genCfg.MaxTokens,
			Provider:    genCfg.Provider,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini generator: %w", err)
		}
		return g, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", genCfg.Provider)
	}
}

// healthChecker adapts an optional generator to a health check.
func healthChecker(g compose.Generator) healthuc.Checker {
	return healthuc.CheckFunc(func(ctx context.Context) error {
		if g == nil {
			return nil
		}
		if hc, ok := g.(domain.HealthChecker); ok {
			if err := hc.HealthCheck(ctx); err != nil {
				return fmt.Errorf("generation health check: %w", err)
			}
		}
		return nil
	})
}
