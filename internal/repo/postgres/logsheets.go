package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/geocoder89/drivingschool/internal/observability"
	"github.com/jackc/pgx/v5"
)

const logsheetColumns = `id, username, date, km_covered, learning, timing_from, timing_to, created_at, updated_at`

type LogsheetsRepo struct {
	db   DBTX
	prom *observability.Prom
}

func NewLogsheetsRepo(db DBTX, prom *observability.Prom) *LogsheetsRepo {
	return &LogsheetsRepo{db: db, prom: prom}
}

func scanLogsheet(row pgx.Row) (logsheet.Logsheet, error) {
	var l logsheet.Logsheet

	err := row.Scan(&l.ID, &l.Username, &l.Date, &l.KmCovered, &l.Learning, &l.TimingFrom, &l.TimingTo, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return logsheet.Logsheet{}, logsheet.ErrNotFound
		}
		return logsheet.Logsheet{}, err
	}

	return l, nil
}

func (r *LogsheetsRepo) Create(ctx context.Context, l logsheet.Logsheet) error {
	return observe(r.prom, "logsheets.create", func() error {
		_, err := r.db.Exec(ctx, `
		INSERT INTO logsheets (`+logsheetColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			l.ID, l.Username, l.Date, l.KmCovered, l.Learning, l.TimingFrom, l.TimingTo, l.CreatedAt, l.UpdatedAt,
		)
		return err
	})
}

func (r *LogsheetsRepo) GetByID(ctx context.Context, id string) (l logsheet.Logsheet, err error) {
	err = observe(r.prom, "logsheets.get_by_id", func() error {
		l, err = scanLogsheet(r.db.QueryRow(ctx, `SELECT `+logsheetColumns+` FROM logsheets WHERE id = $1`, id))
		return err
	})
	return l, err
}

func (r *LogsheetsRepo) ListByIDs(ctx context.Context, ids []string) ([]logsheet.Logsheet, error) {
	if len(ids) == 0 {
		return []logsheet.Logsheet{}, nil
	}

	return r.list(ctx, "logsheets.list_by_ids",
		`SELECT `+logsheetColumns+` FROM logsheets
		WHERE id = ANY($1::text[]::uuid[])
		ORDER BY created_at ASC, id ASC`, ids)
}

func (r *LogsheetsRepo) ListAll(ctx context.Context) ([]logsheet.Logsheet, error) {
	return r.list(ctx, "logsheets.list_all",
		`SELECT `+logsheetColumns+` FROM logsheets ORDER BY created_at ASC, id ASC`)
}

func (r *LogsheetsRepo) list(ctx context.Context, op, sql string, args ...any) ([]logsheet.Logsheet, error) {
	out := make([]logsheet.Logsheet, 0)

	err := observe(r.prom, op, func() error {
		rows, err := r.db.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			l, err := scanLogsheet(rows)
			if err != nil {
				return err
			}
			out = append(out, l)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LogsheetsRepo) Update(ctx context.Context, l logsheet.Logsheet) error {
	var affected int64

	err := observe(r.prom, "logsheets.update", func() error {
		tag, err := r.db.Exec(ctx, `
		UPDATE logsheets
		SET date = $2,
			km_covered = $3,
			learning = $4,
			timing_from = $5,
			timing_to = $6,
			updated_at = NOW()
		WHERE id = $1`, l.ID, l.Date, l.KmCovered, l.Learning, l.TimingFrom, l.TimingTo)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}
	if affected == 0 {
		return logsheet.ErrNotFound
	}
	return nil
}

func (r *LogsheetsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := observe(r.prom, "logsheets.delete", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM logsheets WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}
	if affected == 0 {
		return logsheet.ErrNotFound
	}
	return nil
}

func (r *LogsheetsRepo) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	var affected int64

	err := observe(r.prom, "logsheets.delete_by_username", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM logsheets WHERE username = $1`, username)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	return affected, err
}
