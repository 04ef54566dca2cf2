package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"herd-registry/internal/adapters/auth/identity"
	"herd-registry/internal/adapters/storage/postgres"
	"herd-registry/internal/platform/config"
	"herd-registry/internal/platform/logger"
	"herd-registry/internal/router"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Logger.Level),
		Format: logger.ParseFormat(cfg.Logger.Format),
		App:    cfg.Logger.App,
	})

	deps := router.Deps{Log: log}

	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(cfg.Postgres.DSN, cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns)
		if err != nil {
			log.Error("postgres open failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		deps.DB = db
		log.Info("storage: postgres", nil)
	} else {
		log.Info("storage: in-memory (DB_DSN vacío)", nil)
	}

	verifier, err := identity.NewVerifier(identity.Config{
		BaseURL: cfg.Identity.BaseURL,
		APIKey:  cfg.Identity.APIKey,
		Timeout: cfg.Identity.Timeout,
	})
	switch {
	case err == nil:
		deps.Verifier = verifier
		log.Info("auth: identity verifier", map[string]any{"base_url": cfg.Identity.BaseURL})
	case errors.Is(err, identity.ErrNotConfigured):
		log.Warn("auth: sin verifier, modo dev (X-Debug-User-ID)", nil)
	default:
		log.Error("identity verifier init failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.New(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("http server listening", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", map[string]any{"error": err.Error()})
	}
	log.Info("bye", nil)
}
