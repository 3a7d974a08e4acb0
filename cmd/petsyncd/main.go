package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/rtirumala2025/petsync/internal/config"
	"github.com/rtirumala2025/petsync/internal/server/handlers"
	"github.com/rtirumala2025/petsync/internal/server/jwt"
	"github.com/rtirumala2025/petsync/internal/server/middleware"
	"github.com/rtirumala2025/petsync/internal/server/notify"
	"github.com/rtirumala2025/petsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// tokenSweepInterval paces the expired refresh token cleanup.
const tokenSweepInterval = time.Hour

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting petsyncd",
		"version", Version,
		"port", cfg.ServerPort,
		"merge_granularity", cfg.MergeGranularity)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath, cfg.MergeGranularity)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close redis client", "error", err)
			}
		}()
		logger.Info("cross-instance notifications enabled", "redis", opts.Addr)
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	hub := notify.New(logger, rdb)
	go hub.Run(ctx)

	go sweepExpiredTokens(ctx, logger, store)

	authHandler := handlers.NewAuthHandler(logger, store, store, jwtService)
	syncHandler := handlers.NewSyncHandler(logger, store, hub)
	wsHandler := handlers.NewWSHandler(logger, hub)
	healthHandler := handlers.NewHealthHandler(logger, Version)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.LoggingWithSkip(logger, []string{"/health"}))

	router.Get("/health", healthHandler.HandleHealth)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/refresh", authHandler.HandleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(logger, jwtService))
			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/sync", syncHandler.HandleGetSync)
			r.Post("/sync", syncHandler.HandlePostSync)
			r.Get("/sync/subscribe", wsHandler.HandleSubscribe)
		})
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// sweepExpiredTokens periodically removes expired refresh tokens.
func sweepExpiredTokens(ctx context.Context, logger *slog.Logger, store *sqlite.Storage) {
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.DeleteExpiredTokens(ctx)
			if err != nil {
				logger.Error("token sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("removed expired refresh tokens", "count", removed)
			}
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func printVersion() {
	fmt.Printf("PetSync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
