package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/symptom-finder/config"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/bootstrap"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/logging"
	"github.com/GoSim-25-26J-441/symptom-finder/internal/metrics"
)

const serviceName = "symptom-finder"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.Init(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("open store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer func() { _ = store.Close(context.Background()) }()

	m := metrics.Default()
	svc, err := bootstrap.NewLookupService(cfg, store, m)
	if err != nil {
		logger.Fatal("lookup service", zap.Error(err))
	}

	if cfg.Seed.OnStart {
		if _, err := bootstrap.SeedStore(ctx, svc, cfg.Seed.Path); err != nil {
			logger.Fatal("seed store", zap.Error(err))
		}
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		SeedPath:    cfg.Seed.Path,
		Lookup:      svc,
		Metrics:     m,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Backend),
			zap.Bool("fallback", cfg.Fallback.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
