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

	"github.com/geocoder89/drivingschool/internal/config"
	"github.com/geocoder89/drivingschool/internal/db"
	"github.com/geocoder89/drivingschool/internal/observability"
	"github.com/geocoder89/drivingschool/internal/reconciler"
	"github.com/geocoder89/drivingschool/internal/repo/postgres"
	"github.com/geocoder89/drivingschool/internal/service/logsheets"
	"github.com/prometheus/client_golang/prometheus"
)

const serviceName = "drivingschool-reconciler"

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, cfg.LogFile)
	slog.SetDefault(log)

	if cfg.Store != "postgres" {
		log.Error("reconciler needs STORE=postgres", "store", cfg.Store)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: serviceName,
			Environment: cfg.Env,
			Endpoint:    cfg.OTELEndpoint,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			sctx, scancel := config.WithTimeout(5 * time.Second)
			defer scancel()
			_ = shutdownTracer(sctx)
		}()
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	stats := observability.NewReconcileStats()

	svc := logsheets.New(postgres.NewStore(pool, prom), log)

	runner := reconciler.New(reconciler.Config{
		Interval: cfg.ReconcileInterval,
	}, svc, stats, prom, log)

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ReconcilerPort),
		Handler:           runner.HealthHandler(pool, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("reconciler health server starting", "port", cfg.ReconcilerPort)
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("reconciler has started", "interval", cfg.ReconcileInterval.String())

	if err := runner.Run(ctx); err != nil {
		log.Error("reconciler stopped with error", "err", err)
	}

	sctx, scancel := config.WithTimeout(5 * time.Second)
	defer scancel()
	_ = healthSrv.Shutdown(sctx)

	log.Info("reconciler shutdown complete")
}
