package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shelfapi/internal/auth"
	"shelfapi/internal/blob"
	"shelfapi/internal/config"
	"shelfapi/internal/cover"
	"shelfapi/internal/httpx"
	"shelfapi/internal/library"
	"shelfapi/internal/logger"
	"shelfapi/internal/platform/openlibrary"
	"shelfapi/internal/platform/redisx"
	"shelfapi/internal/session"
	"shelfapi/internal/user"
)

const (
	maxBodyBytes           = 1 << 20
	sessionCleanupInterval = time.Hour
	shutdownTimeout        = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Format:      cfg.LogFormat,
		Environment: cfg.Environment,
		Level:       logger.ParseLevel(cfg.LogLevel),
	})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("cannot open database (%s): %w", cfg.RedactedDSN(), err)
	}
	defer dbPool.Close()
	log.Info("database connection OK")

	checks := []readinessCheck{dbPool.Ping}

	olClient := openlibrary.NewClient(openlibrary.Config{
		BaseURL:    cfg.OpenLibrary.BaseURL,
		CoversURL:  cfg.OpenLibrary.CoversURL,
		UserAgent:  cfg.OpenLibrary.UserAgent,
		RPS:        cfg.OpenLibrary.RPS,
		MaxRetries: cfg.OpenLibrary.MaxRetries,
		Timeout:    cfg.OpenLibrary.Timeout,
		CoverSize:  cfg.Cover.Size,
	}, log)

	var catalog library.Catalog = olClient
	if cfg.RedisURL != "" {
		redisClient, err := redisx.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		checks = append(checks, func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })

		cache := redisx.NewCache(redisClient, "shelfapi")
		catalog = library.NewCachedCatalog(olClient, cache, cfg.LookupCacheTTL, cfg.LookupNegativeTTL, log)
		log.Info("lookup cache enabled", "ttl", cfg.LookupCacheTTL)
	}

	storage, err := blob.NewFSStorage(cfg.BlobDir)
	if err != nil {
		return fmt.Errorf("blob storage: %w", err)
	}
	covers := cover.NewAcquirer(olClient, storage, cfg.Cover.Timeout, cfg.OpenLibrary.UserAgent, log)

	userRepo := user.NewPostgresRepo(dbPool, cfg.DBTimeout)
	sessionRepo := session.NewPostgresRepo(dbPool, cfg.DBTimeout)
	blacklistRepo := session.NewBlacklistPostgresRepo(dbPool, cfg.DBTimeout)
	libraryRepo := library.NewPostgresRepo(dbPool, cfg.DBTimeout)

	userService := user.NewService(userRepo)
	sessionService := session.NewService(sessionRepo, blacklistRepo, log)
	authService := auth.NewService(cfg.JWTSecret, userService, sessionService, log)
	libraryService := library.NewService(libraryRepo, catalog, covers, library.Config{CoverSize: cfg.Cover.Size}, log)

	go sessionService.RunCleanup(ctx, sessionCleanupInterval)

	router := newRouter(handlers{
		library: library.NewHTTPHandler(libraryService),
		users:   user.NewHTTPHandler(userService),
		auth:    auth.NewHTTPHandler(authService),
		session: session.NewHTTPHandler(sessionService),
		blob:    blob.NewHTTPHandler(storage, log),
	}, httpx.AuthMiddleware(cfg.JWTSecret, sessionService), checks...)

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler := httpx.Chain(router,
		httpx.RecoveryMiddleware(log),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(log),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(maxBodyBytes),
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: library.RequestBudget + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Addr, "env", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
