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
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MikeSquared-Agency/TwinScore/internal/api"
	"github.com/MikeSquared-Agency/TwinScore/internal/config"
	"github.com/MikeSquared-Agency/TwinScore/internal/energymix"
	"github.com/MikeSquared-Agency/TwinScore/internal/hermes"
	"github.com/MikeSquared-Agency/TwinScore/internal/metrics"
	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
	"github.com/MikeSquared-Agency/TwinScore/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	engine, err := scoring.NewEngine(cfg.Engine(), logger)
	if err != nil {
		var cfgErr *scoring.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Error("invalid scoring configuration", "field", cfgErr.Field, "reason", cfgErr.Reason)
		} else {
			logger.Error("failed to build scoring engine", "error", err)
		}
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Evaluation history
	var history store.Store
	if cfg.Database.URL != "" {
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		history = db
		logger.Info("connected to database")
	} else {
		history = store.NewMemoryStore()
		logger.Warn("no database configured, evaluation history is kept in memory")
	}
	defer history.Close()

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, "twinscore", logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Live renewable share (optional)
	var mix energymix.Provider
	if cfg.EnergyMixEnabled() {
		client := energymix.NewHTTPClient(cfg.EnergyMix.URL, cfg.EnergyMix.Token, cfg.EnergyMixTimeout())
		mix = energymix.NewCachedProvider(client, cfg.EnergyMixCacheTTL())
		logger.Info("energy mix lookups enabled", "zone", cfg.EnergyMix.Zone, "cache_ttl", cfg.EnergyMixCacheTTL())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// API server
	router := api.NewRouter(engine, history, hermesClient, mix, m, cfg, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
