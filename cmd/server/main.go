package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/docview/docview/internal/api"
	"github.com/docview/docview/internal/config"
	"github.com/docview/docview/internal/engine"
	"github.com/docview/docview/internal/notify"
	"github.com/docview/docview/internal/source"
	"github.com/docview/docview/internal/viewer"
)

func main() {
	godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Notification fan-out: structured log plus live subscribers.
	hub := notify.NewHub()
	sink := notify.Sinks{&notify.LogSink{Log: log}, hub}

	fetcher := source.NewFetcher(cfg.FetchTimeout, cfg.MaxUploadBytes)
	factory := engine.NewLocal(fetcher, engine.Options{PageWords: cfg.PageWords})

	manager := viewer.NewManager(cfg, factory, sink, log)

	srv := api.NewServer(manager, hub, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		manager.Close()
		hub.Close()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		fetcher.Close()
	}()

	log.Info("starting docview", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
