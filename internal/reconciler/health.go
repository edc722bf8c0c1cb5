package reconciler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ReadinessDeps interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness, readiness, the in-process stats and, when a
// gatherer is given, the Prometheus metrics.
func (r *Runner) HealthHandler(deps ReadinessDeps, gatherer prometheus.Gatherer) http.Handler {
	g := gin.New()

	g.Use(gin.Recovery())

	// liveness: process is up
	g.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// readiness: the loop is running and the store answers
	g.GET("/readyz", func(c *gin.Context) {
		if !r.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}

		if deps != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
			defer cancel()

			if err := deps.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	g.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, r.stats.Snapshot())
	})

	if gatherer != nil {
		g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return g
}
