// Package main is the entry point for the prerenderd API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"prerenderd/internal/cache"
	"prerenderd/internal/config"
	"prerenderd/internal/database"
	"prerenderd/internal/handlers"
	"prerenderd/internal/queue"
	"prerenderd/internal/router"
	"prerenderd/internal/site"
	"prerenderd/internal/store"
	"prerenderd/internal/templates"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"site", cfg.SiteURL,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (entry read cache + job broker).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	entryCache := cache.NewEntryCache(valkeyClient, cache.DefaultEntryTTL)

	// Initialize data stores.
	entryStore := store.NewEntryStore(db, entryCache)
	secretStore := store.NewSecretStore(db)
	auditLog := store.NewInvalidationLogStore(db)
	htmlVersion := store.NewVersion(db, store.OptionHTMLVersion)
	schemaVersion := store.NewVersion(db, store.OptionSchemaVersion)

	// Seed the version tokens on first boot.
	ctx := context.Background()
	if err := htmlVersion.Init(ctx); err != nil {
		slog.Error("failed to init html version", "error", err)
		os.Exit(1)
	}
	if err := schemaVersion.Init(ctx); err != nil {
		slog.Error("failed to init schema version", "error", err)
		os.Exit(1)
	}

	// Template registry bound to the configured site URL scheme.
	siteURLs := site.New(cfg.SiteURL, cfg.BlogPath, cfg.PostTypes, cfg.ChronoPostType)
	registry := templates.NewRegistry(siteURLs)

	// Asynq client for enqueueing render jobs on Valkey.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.ValkeyAddr(),
		Password: cfg.ValkeyPassword,
	})
	defer asynqClient.Close()

	// The invalidation scheduler ties entries, versions, and the queue
	// together.
	sched := queue.New(queue.Options{
		Entries:        entryStore,
		Version:        htmlVersion,
		Registry:       registry,
		Enqueuer:       asynqClient,
		Audit:          auditLog,
		ChronoPostType: cfg.ChronoPostType,
	})

	// Create handler groups with their dependencies.
	prerenderHandlers := handlers.NewPrerender(secretStore, entryStore, htmlVersion, registry)
	eventHandlers := handlers.NewEvents(sched)
	pageHandlers := handlers.NewPages(sched)
	adminHandlers := handlers.NewAdmin(htmlVersion, schemaVersion, secretStore, entryCache, auditLog)

	// Set up the Chi router with all middleware and routes.
	r := router.New(cfg.APIKey, prerenderHandlers, eventHandlers, pageHandlers, adminHandlers)

	// Create the HTTP server with sensible timeouts.
	// ReadTimeout must accommodate renderer callbacks posting large HTML
	// bodies over slow links.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Periodically drop expired render secrets so abandoned render cycles
	// do not accumulate rows.
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	go func() {
		ticker := time.NewTicker(store.SecretTTL)
		defer ticker.Stop()
		for {
			select {
			case <-janitorCtx.Done():
				return
			case <-ticker.C:
				if n, err := secretStore.FlushExpired(janitorCtx); err != nil {
					slog.Warn("expired secret cleanup failed", "error", err)
				} else if n > 0 {
					slog.Debug("expired secrets removed", "count", n)
				}
			}
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
