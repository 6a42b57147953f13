package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exits_backend/internal/bootstrap"
	"exits_backend/internal/digest"
	"exits_backend/internal/digest/handler"
	apphttp "exits_backend/internal/http"
	"exits_backend/internal/http/router"
	"exits_backend/internal/leads"
	"exits_backend/internal/scheduler"
	"exits_backend/platform/config"
	"exits_backend/platform/db"
	"exits_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	infra, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize infrastructure", "error", err)
		panic("failed to initialize infrastructure: " + err.Error())
	}
	defer infra.Close()

	enqueuer, closeScheduler := initDigestEnqueuer(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	infra.RegisterNotifications()

	leadsModule := leads.NewModule(
		infra.Pool,
		infra.Listings.Service(),
		infra.Subscribers.Service(),
		infra.Bus,
		infra.Verticals,
		infra.Validator,
		log,
	)
	digestModule := digest.NewModule(infra.DigestService(), infra.Verticals, infra.Validator, enqueuer)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:         cfg,
		Logger:         log,
		StoreAvailable: infra.StoreAvailable(),
		EventBus:       infra.Bus,
		Verticals:      infra.Verticals,
		Validator:      infra.Validator,
		Modules: []apphttp.Module{
			infra.Listings,
			infra.Subscribers,
			leadsModule,
			digestModule,
		},
	}
	if infra.StoreAvailable() {
		app.Health = db.NewPoolAdapter(infra.Pool)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initDigestEnqueuer returns a nil interface (not a typed nil) when Redis is
// absent so the digest handler sends inline.
func initDigestEnqueuer(cfg config.SchedulerConfig, log *logger.Logger) (handler.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; weekly digests are sent inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}
