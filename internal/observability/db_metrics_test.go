package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/geocoder89/drivingschool/internal/actorctx"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, want: "unique_violation"},
		{name: "not null", err: &pgconn.PgError{Code: "23502"}, want: "not_null_violation"},
		{name: "check", err: &pgconn.PgError{Code: "23514"}, want: "check_violation"},
		{name: "bad uuid", err: &pgconn.PgError{Code: "22P02"}, want: "invalid_input"},
		{name: "other pg", err: &pgconn.PgError{Code: "42P01"}, want: "pg_42P01"},
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "connection", err: errors.New("connection refused"), want: "connection"},
		{name: "unknown", err: errors.New("boom"), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDBErr(tt.err); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObserveDB_MissIsNotAnError(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())
	errMissing := errors.New("user not found")
	miss := func(err error) bool { return errors.Is(err, errMissing) }

	_ = p.ObserveDB("users.get_by_id", func() error { return errMissing }, miss)
	_ = p.ObserveDB("users.get_by_id", func() error { return pgx.ErrNoRows }, nil)
	_ = p.ObserveDB("users.create", func() error { return &pgconn.PgError{Code: "23505"} }, miss)

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.get_by_id", "unknown")); got != 0 {
		t.Fatalf("miss counted as error: %v", got)
	}
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")); got != 1 {
		t.Fatalf("unique violation count = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(p.DbQueryDuration); n != 2 {
		t.Fatalf("duration series = %d, want 2 (miss, error)", n)
	}
}

func TestTraceHandler_AddsActingUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := actorctx.WithUser(context.Background(), user.User{ID: "u-42"})
	logger.InfoContext(ctx, "logsheet uploaded")
	logger.InfoContext(context.Background(), "anonymous")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], `"user_id":"u-42"`) {
		t.Fatalf("missing user_id: %s", lines[0])
	}
	if strings.Contains(lines[1], "user_id") {
		t.Fatalf("unexpected user_id: %s", lines[1])
	}
}

func TestReconcileStats_Snapshot(t *testing.T) {
	s := NewReconcileStats()
	s.IncRuns()
	s.AddFixes(1, 2, 3)

	snap := s.Snapshot()
	if snap.Runs != 1 || snap.Relinked != 1 || snap.DeletedOrphans != 2 || snap.StrippedIDs != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.LastRun != nil {
		t.Fatalf("no duration observed yet, LastRun should be nil")
	}
}
