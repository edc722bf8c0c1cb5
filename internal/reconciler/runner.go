// Package reconciler runs the logsheet repair pass on a schedule and serves
// its health and stats.
package reconciler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/geocoder89/drivingschool/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Reconciler interface {
	Reconcile(ctx context.Context) (logsheet.ReconcileReport, error)
}

type Config struct {
	Interval time.Duration
	// Backoff picks the retry delay after consecutive failures. It never
	// exceeds Interval.
	Backoff func(attempt int) time.Duration
}

type Runner struct {
	cfg    Config
	rec    Reconciler
	stats  *observability.ReconcileStats
	prom   *observability.Prom
	logger *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, rec Reconciler, stats *observability.ReconcileStats, prom *observability.Prom, logger *slog.Logger) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Backoff == nil {
		cfg.Backoff = ExponentialBackoff
	}
	if stats == nil {
		stats = observability.NewReconcileStats()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		cfg:    cfg,
		rec:    rec,
		stats:  stats,
		prom:   prom,
		logger: logger,
	}
}

// Run reconciles once straight away, then every Interval until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.setReady(true)
	defer r.setReady(false)

	failures := 0

	for {
		delay := r.cfg.Interval

		if err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			delay = min(r.cfg.Backoff(failures), r.cfg.Interval)
			failures++
		} else {
			failures = 0
		}

		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("reconciler received shutdown signal")
			return nil
		case <-timer.C:
		}
	}
}

func (r *Runner) RunOnce(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, "logsheets.reconcile")
	defer span.End()

	start := time.Now()

	report, err := r.rec.Reconcile(ctx)

	elapsed := time.Since(start)
	r.stats.IncRuns()
	r.stats.ObserveDuration(elapsed)
	if r.prom != nil {
		r.prom.ReconcileDuration.Observe(elapsed.Seconds())
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconcile failed")
		r.stats.IncFailed()
		if r.prom != nil {
			r.prom.ReconcileRuns.WithLabelValues("error").Inc()
		}
		r.logger.ErrorContext(ctx, "reconcile failed", "err", err, "duration_ms", elapsed.Milliseconds())
		return err
	}

	span.SetAttributes(
		attribute.Int("reconcile.relinked", report.Relinked),
		attribute.Int("reconcile.deleted_orphans", report.DeletedOrphans),
		attribute.Int("reconcile.stripped_ids", report.StrippedIDs),
	)

	r.stats.AddFixes(report.Relinked, report.DeletedOrphans, report.StrippedIDs)
	if r.prom != nil {
		r.prom.ReconcileRuns.WithLabelValues("ok").Inc()
		r.prom.ReconcileFixes.WithLabelValues("relinked").Add(float64(report.Relinked))
		r.prom.ReconcileFixes.WithLabelValues("deleted_orphan").Add(float64(report.DeletedOrphans))
		r.prom.ReconcileFixes.WithLabelValues("stripped_id").Add(float64(report.StrippedIDs))
	}

	r.logger.DebugContext(ctx, "reconcile pass done", "duration_ms", elapsed.Milliseconds())
	return nil
}

func (r *Runner) Ready() bool {
	r.readyMu.RLock()
	defer r.readyMu.RUnlock()
	return r.ready
}

func (r *Runner) setReady(v bool) {
	r.readyMu.Lock()
	r.ready = v
	r.readyMu.Unlock()
}
