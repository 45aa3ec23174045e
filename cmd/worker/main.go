// Package main is the entry point for the prerenderd render worker.
// It consumes render jobs from the Valkey-backed queue and dispatches each
// one to the AWS Lambda renderer.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"prerenderd/internal/config"
	"prerenderd/internal/database"
	"prerenderd/internal/jobs"
	"prerenderd/internal/render"
	"prerenderd/internal/site"
	"prerenderd/internal/store"
	"prerenderd/internal/templates"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The worker shares the durable stores with the API server but never
	// touches the read cache: it only issues secrets and reads versions.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	secretStore := store.NewSecretStore(db)
	htmlVersion := store.NewVersion(db, store.OptionHTMLVersion)

	siteURLs := site.New(cfg.SiteURL, cfg.BlogPath, cfg.PostTypes, cfg.ChronoPostType)
	registry := templates.NewRegistry(siteURLs)

	invoker := render.NewLambda(cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.LambdaFunction)
	dispatcher := render.NewDispatcher(registry, secretStore, htmlVersion, invoker,
		cfg.CallbackURL, cfg.Variable, cfg.Element, cfg.QueryArg)

	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.ValkeyAddr(),
		Password: cfg.ValkeyPassword,
	}, asynq.Config{
		// Lambda invokes return as soon as the event is accepted, so a
		// handful of workers keeps up with bursty cascades.
		Concurrency: 8,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TypeRender, func(ctx context.Context, t *asynq.Task) error {
		var p jobs.RenderPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			slog.Error("render task has bad payload", "error", err)
			return err
		}
		return dispatcher.Dispatch(ctx, p.Type, p.ID, p.Args...)
	})

	slog.Info("worker starting", "queue", cfg.ValkeyAddr(), "lambda", cfg.LambdaFunction)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
