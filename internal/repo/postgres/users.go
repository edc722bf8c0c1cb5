package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/observability"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, role, name, age, address, contact_number, vehicle_to_learn, email, username,
	experience, specialties, license, bio, avatar, password_hash, refresh_token_hash, status,
	is_certificate_eligible, logsheet_ids::text[], created_at, updated_at`

type UsersRepo struct {
	db   DBTX
	prom *observability.Prom
}

func NewUsersRepo(db DBTX, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, prom: prom}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Role,
		&u.Name,
		&u.Age,
		&u.Address,
		&u.ContactNumber,
		&u.VehicleToLearn,
		&u.Email,
		&u.Username,
		&u.Experience,
		&u.Specialties,
		&u.License,
		&u.Bio,
		&u.Avatar,
		&u.PasswordHash,
		&u.RefreshTokenHash,
		&u.Status,
		&u.IsCertificateEligible,
		&u.Logsheet,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func mapUserUniqueErr(err error) error {
	if !IsUniqueViolation(err) {
		return err
	}

	switch constraintName(err) {
	case "users_email_uniq":
		return user.ErrDuplicateEmail
	case "users_username_uniq":
		return user.ErrDuplicateUsername
	case "users_contact_number_uniq":
		return user.ErrDuplicateContact
	default:
		return err
	}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := observe(r.prom, "users.create", func() error {
		_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, role, name, age, address, contact_number, vehicle_to_learn, email, username,
			experience, specialties, license, bio, avatar, password_hash, status, is_certificate_eligible,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			u.ID, u.Role, u.Name, u.Age, u.Address, u.ContactNumber, nonNil(u.VehicleToLearn), u.Email, u.Username,
			u.Experience, nonNil(u.Specialties), u.License, u.Bio, u.Avatar, u.PasswordHash, u.Status,
			u.IsCertificateEligible, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	return mapUserUniqueErr(err)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (u user.User, err error) {
	err = observe(r.prom, "users.get_by_id", func() error {
		u, err = scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = observe(r.prom, "users.get_by_email", func() error {
		u, err = scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
		return err
	})
	return u, err
}

func (r *UsersRepo) ContactInUse(ctx context.Context, contact, excludeID string) (bool, error) {
	var exists bool

	err := observe(r.prom, "users.contact_in_use", func() error {
		return r.db.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM users
			WHERE contact_number = $1 AND ($2 = '' OR id::text <> $2)
		)`, contact, excludeID).Scan(&exists)
	})

	return exists, err
}

func (r *UsersRepo) UsernameInUse(ctx context.Context, username string) (bool, error) {
	var exists bool

	err := observe(r.prom, "users.username_in_use", func() error {
		return r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(username) = lower($1))`, username).Scan(&exists)
	})

	return exists, err
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	out := make([]user.User, 0)

	err := observe(r.prom, "users.list", func() error {
		sql := `SELECT ` + userColumns + ` FROM users
			WHERE ($1 = '' OR role = $1)
			ORDER BY created_at ASC, id ASC`
		if filter.ForUpdate {
			sql += ` FOR UPDATE`
		}

		rows, err := r.db.Query(ctx, sql, string(filter.Role))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, u user.User) error {
	return r.execOne(ctx, "users.update_profile", `
		UPDATE users
		SET name = $2,
			bio = $3,
			address = $4,
			contact_number = $5,
			license = $6,
			experience = $7,
			specialties = $8,
			avatar = $9,
			updated_at = NOW()
		WHERE id = $1`,
		u.ID, u.Name, u.Bio, u.Address, u.ContactNumber, u.License, u.Experience, nonNil(u.Specialties), u.Avatar,
	)
}

// SetStatus also drops the stored refresh token when suspending.
func (r *UsersRepo) SetStatus(ctx context.Context, id string, status user.Status) error {
	return r.execOne(ctx, "users.set_status", `
		UPDATE users
		SET status = $2,
			refresh_token_hash = CASE WHEN $2 = 'suspended' THEN NULL ELSE refresh_token_hash END,
			updated_at = NOW()
		WHERE id = $1`, id, string(status))
}

func (r *UsersRepo) SetCertificateEligible(ctx context.Context, id string, eligible bool) error {
	return r.execOne(ctx, "users.set_certificate_eligible", `
		UPDATE users SET is_certificate_eligible = $2, updated_at = NOW() WHERE id = $1`, id, eligible)
}

func (r *UsersRepo) SetRefreshTokenHash(ctx context.Context, id string, hash *string) error {
	return r.execOne(ctx, "users.set_refresh_token", `
		UPDATE users SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

// RotateRefreshTokenHash is a single conditional UPDATE, so two concurrent
// refreshes with the same token cannot both win.
func (r *UsersRepo) RotateRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	var rows int64

	err := observe(r.prom, "users.rotate_refresh_token", func() error {
		tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET refresh_token_hash = $3, updated_at = NOW()
		WHERE id = $1 AND refresh_token_hash = $2`, id, oldHash, newHash)
		if err != nil {
			return err
		}
		rows = tag.RowsAffected()
		return nil
	})

	return rows == 1, err
}

func (r *UsersRepo) AppendLogsheet(ctx context.Context, userID, logID string) error {
	return r.execOne(ctx, "users.append_logsheet", `
		UPDATE users
		SET logsheet_ids = CASE
				WHEN $2::uuid = ANY(logsheet_ids) THEN logsheet_ids
				ELSE array_append(logsheet_ids, $2::uuid)
			END,
			updated_at = NOW()
		WHERE id = $1`, userID, logID)
}

func (r *UsersRepo) RemoveLogsheet(ctx context.Context, userID, logID string) error {
	return r.execOne(ctx, "users.remove_logsheet", `
		UPDATE users
		SET logsheet_ids = array_remove(logsheet_ids, $2::uuid), updated_at = NOW()
		WHERE id = $1`, userID, logID)
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "users.delete", `DELETE FROM users WHERE id = $1`, id)
}

// execOne runs a statement that must touch exactly the row identified by id.
func (r *UsersRepo) execOne(ctx context.Context, op, sql string, args ...any) error {
	var affected int64

	err := observe(r.prom, op, func() error {
		tag, err := r.db.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return mapUserUniqueErr(err)
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
