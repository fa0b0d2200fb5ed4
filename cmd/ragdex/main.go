package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kognita-cloud/ragdex/internal/config"
	"github.com/kognita-cloud/ragdex/internal/db"
	dbRedis "github.com/kognita-cloud/ragdex/internal/db/redis"
	"github.com/kognita-cloud/ragdex/internal/domain"
	logpkg "github.com/kognita-cloud/ragdex/internal/logger"
	"github.com/kognita-cloud/ragdex/internal/metrics"
	blobrepo "github.com/kognita-cloud/ragdex/internal/repository/blob"
	chunkrepo "github.com/kognita-cloud/ragdex/internal/repository/chunk"
	documentrepo "github.com/kognita-cloud/ragdex/internal/repository/document"
	historyrepo "github.com/kognita-cloud/ragdex/internal/repository/history"
	chiTransport "github.com/kognita-cloud/ragdex/internal/transport/chi"
	openaiProvider "github.com/kognita-cloud/ragdex/internal/transport/openai"
	documentuc "github.com/kognita-cloud/ragdex/internal/usecase/document"
	healthuc "github.com/kognita-cloud/ragdex/internal/usecase/health"
	pipelineuc "github.com/kognita-cloud/ragdex/internal/usecase/pipeline"
	queryuc "github.com/kognita-cloud/ragdex/internal/usecase/query"
	"github.com/kognita-cloud/ragdex/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting ragdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	domain.KeyPrefix = cfg.Storage.KeyPrefix

	// Both supported drivers speak RESP, so a single rueidis-backed store
	// serves valkey and redis alike.
	var store db.Store
	switch cfg.Database.Driver {
	case "valkey", "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterProviderMetrics()
	metrics.RegisterPipelineMetrics()

	// Model providers
	embedder := openaiProvider.NewEmbedder(&openaiProvider.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	generator := openaiProvider.NewGenerator(&openaiProvider.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Logger:      logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("generation_model", cfg.Generation.Model),
	)

	// Create repositories (domain-native, no adapters)
	docRepo := documentrepo.New(store)
	chunkRepo := chunkrepo.New(store)
	historyRepo := historyrepo.New(store)
	blobStore := blobrepo.New(store)

	// Create use case services
	pipelineSvc := pipelineuc.New(docRepo, chunkRepo, embedder, newStoreLocker(store), pipelineuc.Options{
		ChunkMaxSize: cfg.Chunking.MaxSize,
		ChunkOverlap: cfg.Chunking.Overlap,
		Workers:      cfg.Pipeline.Workers,
		Retries:      cfg.Pipeline.Retries,
		LeaseTTL:     time.Duration(cfg.Pipeline.LeaseTTLSec) * time.Second,
	})
	docSvc := documentuc.New(docRepo, chunkRepo, blobStore, pipelineSvc, cfg.Pipeline.MaxUploadBytes)
	querySvc := queryuc.New(docRepo, chunkRepo, embedder, generator, historyRepo, queryuc.Options{
		TopK:          cfg.Search.TopK,
		SnippetLength: cfg.Search.SnippetLength,
		MaxChunkChars: cfg.Search.MaxChunkChars,
		HistoryLimit:  cfg.Search.HistoryLimit,
	})
	healthSvc := healthuc.New(store, embedder)

	// Create chi server
	server := chiTransport.NewServer(docSvc, pipelineSvc, querySvc, healthSvc, cfg.Pipeline.MaxUploadBytes, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// storeLocker adapts db.Locker to the pipeline contract. Each acquisition
// writes a fresh token so a stale holder can be told apart in the store.
type storeLocker struct {
	store db.Locker
}

func newStoreLocker(store db.Locker) *storeLocker {
	return &storeLocker{store: store}
}

func (l *storeLocker) AcquireLease(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.store.AcquireLease(ctx, key, uuid.NewString(), ttl)
}

func (l *storeLocker) ReleaseLease(ctx context.Context, key string) error {
	return l.store.ReleaseLease(ctx, key)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
