package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/drivingschool/internal/domain/video"
	"github.com/geocoder89/drivingschool/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const videoColumns = `id, candidate, description, url, created_at, updated_at`

type VideosRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewVideosRepo(pool *pgxpool.Pool, prom *observability.Prom) *VideosRepo {
	return &VideosRepo{pool: pool, prom: prom}
}

func scanVideo(row pgx.Row) (video.Video, error) {
	var v video.Video

	err := row.Scan(&v.ID, &v.Candidate, &v.Description, &v.URL, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return video.Video{}, video.ErrNotFound
		}
		return video.Video{}, err
	}

	return v, nil
}

func (r *VideosRepo) Create(ctx context.Context, v video.Video) error {
	return observe(r.prom, "videos.create", func() error {
		_, err := r.pool.Exec(ctx, `
		INSERT INTO videos (`+videoColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)`,
			v.ID, v.Candidate, v.Description, v.URL, v.CreatedAt, v.UpdatedAt,
		)
		return err
	})
}

func (r *VideosRepo) GetByID(ctx context.Context, id string) (v video.Video, err error) {
	err = observe(r.prom, "videos.get_by_id", func() error {
		v, err = scanVideo(r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
		return err
	})
	return v, err
}

func (r *VideosRepo) List(ctx context.Context) ([]video.Video, error) {
	out := make([]video.Video, 0)

	err := observe(r.prom, "videos.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			v, err := scanVideo(rows)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VideosRepo) Update(ctx context.Context, v video.Video) error {
	var affected int64

	err := observe(r.prom, "videos.update", func() error {
		tag, err := r.pool.Exec(ctx, `
		UPDATE videos
		SET candidate = $2, description = $3, url = $4, updated_at = NOW()
		WHERE id = $1`, v.ID, v.Candidate, v.Description, v.URL)
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
		return video.ErrNotFound
	}
	return nil
}

func (r *VideosRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := observe(r.prom, "videos.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
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
		return video.ErrNotFound
	}
	return nil
}
