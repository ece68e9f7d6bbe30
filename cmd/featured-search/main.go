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
	"go.uber.org/zap"

	"github.com/txstate-etc/featured-search-results/internal/config"
	dbRedis "github.com/txstate-etc/featured-search-results/internal/db/redis"
	logpkg "github.com/txstate-etc/featured-search-results/internal/logger"
	"github.com/txstate-etc/featured-search-results/internal/metrics"
	directoryrepo "github.com/txstate-etc/featured-search-results/internal/repository/directory"
	querylogrepo "github.com/txstate-etc/featured-search-results/internal/repository/querylog"
	resultrepo "github.com/txstate-etc/featured-search-results/internal/repository/result"
	chiTransport "github.com/txstate-etc/featured-search-results/internal/transport/chi"
	advanceduc "github.com/txstate-etc/featured-search-results/internal/usecase/advanced"
	healthuc "github.com/txstate-etc/featured-search-results/internal/usecase/health"
	resultuc "github.com/txstate-etc/featured-search-results/internal/usecase/result"
	searchuc "github.com/txstate-etc/featured-search-results/internal/usecase/search"
	"github.com/txstate-etc/featured-search-results/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting featured-search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
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

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Create repositories
	catalogRepo := resultrepo.New(store, cfg.Storage.KeyPrefix)
	if err := catalogRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err))
	}

	retention := time.Duration(cfg.Storage.QueryLogDays) * 24 * time.Hour
	queryLog := querylogrepo.New(store, cfg.Storage.KeyPrefix, retention)

	// The people directory is optional: without a database path the
	// /directory endpoint reports not found and health skips the check.
	var people *directoryrepo.Repo
	if cfg.Directory.Path != "" {
		people, err = directoryrepo.Open(cfg.Directory.Path)
		if err != nil {
			logger.Fatal("Failed to open directory database", zap.Error(err))
		}
		defer func() { _ = people.Close() }()
		logger.Info("Directory database opened", zap.String("path", cfg.Directory.Path))
	}

	// Create use case services
	searchSvc := searchuc.New(catalogRepo, queryLog)
	resultSvc := resultuc.New(catalogRepo)

	var peopleStore advanceduc.PeopleStore
	var dirPinger healthuc.DirectoryPinger
	if people != nil {
		peopleStore = people
		dirPinger = people
	}
	advancedSvc := advanceduc.New(catalogRepo, peopleStore).WithHitSource(queryLog)
	healthSvc := healthuc.New(store, dirPinger)

	// Create chi server
	server := chiTransport.NewServer(
		searchSvc, resultSvc, advancedSvc, queryLog, healthSvc,
		chiTransport.Limits{
			MaxQueryLength:  cfg.Search.MaxQueryLength,
			DefaultPageSize: cfg.Search.DefaultPageSize,
			MaxPageSize:     cfg.Search.MaxPageSize,
		},
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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
