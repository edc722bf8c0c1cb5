package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/drivingschool/internal/domain/course"
	"github.com/geocoder89/drivingschool/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `id, category, name, description, timing, features, km_per_day, days, created_at, updated_at`

type CoursesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCoursesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CoursesRepo {
	return &CoursesRepo{pool: pool, prom: prom}
}

func scanCourse(row pgx.Row) (course.Course, error) {
	var c course.Course

	err := row.Scan(&c.ID, &c.Category, &c.Name, &c.Description, &c.Timing, &c.Features, &c.KmPerDay, &c.Days, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}

	return c, nil
}

func (r *CoursesRepo) Create(ctx context.Context, c course.Course) error {
	err := observe(r.prom, "courses.create", func() error {
		_, err := r.pool.Exec(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			c.ID, c.Category, c.Name, c.Description, c.Timing, nonNil(c.Features), c.KmPerDay, c.Days, c.CreatedAt, c.UpdatedAt,
		)
		return err
	})

	if IsUniqueViolation(err) {
		return course.ErrDuplicateName
	}
	return err
}

func (r *CoursesRepo) GetByID(ctx context.Context, id string) (c course.Course, err error) {
	err = observe(r.prom, "courses.get_by_id", func() error {
		c, err = scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
		return err
	})
	return c, err
}

func (r *CoursesRepo) ListByCategory(ctx context.Context, category string) ([]course.Course, error) {
	out := make([]course.Course, 0)

	err := observe(r.prom, "courses.list_by_category", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+courseColumns+` FROM courses
			WHERE category = $1
			ORDER BY created_at ASC, id ASC`, category)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCourse(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CoursesRepo) Update(ctx context.Context, c course.Course) error {
	var affected int64

	err := observe(r.prom, "courses.update", func() error {
		tag, err := r.pool.Exec(ctx, `
		UPDATE courses
		SET category = $2,
			name = $3,
			description = $4,
			timing = $5,
			features = $6,
			km_per_day = $7,
			days = $8,
			updated_at = NOW()
		WHERE id = $1`,
			c.ID, c.Category, c.Name, c.Description, c.Timing, nonNil(c.Features), c.KmPerDay, c.Days,
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	switch {
	case IsUniqueViolation(err):
		return course.ErrDuplicateName
	case err != nil:
		return err
	case affected == 0:
		return course.ErrNotFound
	}
	return nil
}

func (r *CoursesRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := observe(r.prom, "courses.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}
	// if no rows were deleted return a not found error
	if affected == 0 {
		return course.ErrNotFound
	}
	return nil
}
