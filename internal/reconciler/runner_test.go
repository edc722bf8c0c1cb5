package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/geocoder89/drivingschool/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeReconciler struct {
	mu      sync.Mutex
	calls   int
	results []error
	onCall  func(n int)
}

func (f *fakeReconciler) Reconcile(ctx context.Context) (logsheet.ReconcileReport, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	var err error
	if n <= len(f.results) {
		err = f.results[n-1]
	}
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(n)
	}
	if err != nil {
		return logsheet.ReconcileReport{}, err
	}
	return logsheet.ReconcileReport{Relinked: 1}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExponentialBackoff(t *testing.T) {
	assert.GreaterOrEqual(t, ExponentialBackoff(0), 2*time.Second)
	assert.Less(t, ExponentialBackoff(0), 2*time.Second+250*time.Millisecond)
	assert.GreaterOrEqual(t, ExponentialBackoff(2), 8*time.Second)
	assert.Less(t, ExponentialBackoff(20), 5*time.Minute+250*time.Millisecond)
}

func TestRunner_RetriesWithBackoffThenStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts []int
	rec := &fakeReconciler{
		results: []error{errors.New("db down"), errors.New("db down")},
		onCall: func(n int) {
			if n == 4 {
				cancel()
			}
		},
	}

	stats := observability.NewReconcileStats()
	prom := observability.NewProm(prometheus.NewRegistry())

	r := New(Config{
		Interval: time.Millisecond,
		Backoff: func(attempt int) time.Duration {
			attempts = append(attempts, attempt)
			return time.Hour // capped by Interval
		},
	}, rec, stats, prom, quietLogger())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}

	assert.Equal(t, []int{0, 1}, attempts)
	assert.False(t, r.Ready())

	snap := stats.Snapshot()
	assert.GreaterOrEqual(t, snap.Runs, uint64(4))
	assert.Equal(t, uint64(2), snap.Failed)
	assert.GreaterOrEqual(t, snap.Relinked, uint64(1))
}

func TestRunner_HealthHandler(t *testing.T) {
	r := New(Config{Interval: time.Hour}, &fakeReconciler{}, nil, nil, quietLogger())
	h := r.HealthHandler(nil, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	require.NoError(t, r.RunOnce(context.Background()))
	r.setReady(true)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap observability.ReconcileSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, uint64(1), snap.Runs)
	assert.NotNil(t, snap.LastRun)
}
