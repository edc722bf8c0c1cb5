package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/drivingschool/internal/domain/course"
	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/domain/video"
	"github.com/geocoder89/drivingschool/internal/observability"
	"github.com/geocoder89/drivingschool/internal/repo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so a repository works
// the same inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStore(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{pool: pool, prom: prom}
}

func (s *Store) Users() repo.Users {
	return NewUsersRepo(s.pool, s.prom)
}

func (s *Store) Logsheets() repo.Logsheets {
	return NewLogsheetsRepo(s.pool, s.prom)
}

// InTx runs fn against repositories bound to a single transaction, using the
// named return and defer approach.
func (s *Store) InTx(ctx context.Context, fn repo.TxFunc) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(ctx, NewUsersRepo(tx, s.prom), NewLogsheetsRepo(tx, s.prom))
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func observe(prom *observability.Prom, op string, fn func() error) error {
	if prom != nil {
		return prom.ObserveDB(op, fn, isNotFound)
	}
	return fn()
}

func isNotFound(err error) bool {
	return errors.Is(err, user.ErrNotFound) ||
		errors.Is(err, logsheet.ErrNotFound) ||
		errors.Is(err, course.ErrNotFound) ||
		errors.Is(err, video.ErrNotFound)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
