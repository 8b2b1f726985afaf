package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/arenaguard/arenaguard/internal/api"
	"github.com/arenaguard/arenaguard/internal/auth"
	"github.com/arenaguard/arenaguard/internal/config"
	"github.com/arenaguard/arenaguard/internal/metrics"
	"github.com/arenaguard/arenaguard/internal/notify"
	"github.com/arenaguard/arenaguard/internal/suspicion"
	"github.com/arenaguard/arenaguard/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("arenaguard starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"broadcast_interval", cfg.Server.BroadcastInterval,
		"notify_floor", cfg.Server.Notify.Floor,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine := suspicion.NewEngine()
	notifier := notify.New(cfg.Server.Notify)
	registry := metrics.NewRegistry()

	// WebSocket hub — pushes the judge snapshot to UI clients on each tick.
	hub := ws.New(engine, cfg.Server.BroadcastInterval)

	// Combined HTTP server: REST API + WebSocket hub + Prometheus metrics.
	requireKey := auth.Middleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", requireKey(api.New(engine, notifier, registry)))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", registry.Handler(engine))

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		// Config hot reload — only the notify section is applied live.
		if err := config.Watch(ctx, *configPath, func(next *config.Config) {
			notifier.UpdateConfig(next.Server.Notify)
			slog.Info("config reloaded", "notify_floor", next.Server.Notify.Floor)
		}); err != nil {
			slog.Warn("config watch disabled", "err", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("arenaguard shutting down")
		return httpSrv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		slog.Error("shutdown error", "err", err)
		os.Exit(1)
	}
}
