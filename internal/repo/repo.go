// Package repo declares the storage contracts shared by the postgres and
// in-memory implementations.
package repo

import (
	"context"

	"github.com/geocoder89/drivingschool/internal/domain/course"
	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/domain/video"
)

type Users interface {
	// Create inserts u, password hash included. It fails with one of the
	// user.ErrDuplicate* errors when a unique field is taken.
	Create(ctx context.Context, u user.User) error
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	ContactInUse(ctx context.Context, contact, excludeID string) (bool, error)
	UsernameInUse(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, filter user.ListFilter) ([]user.User, error)

	// UpdateProfile writes the editable profile fields. It never touches the
	// password hash, status or refresh token.
	UpdateProfile(ctx context.Context, u user.User) error
	SetStatus(ctx context.Context, id string, status user.Status) error
	SetCertificateEligible(ctx context.Context, id string, eligible bool) error

	SetRefreshTokenHash(ctx context.Context, id string, hash *string) error
	// RotateRefreshTokenHash replaces oldHash with newHash only while oldHash is
	// still the stored value. ok is false when another rotation won.
	RotateRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (ok bool, err error)

	// AppendLogsheet is a no-op when logID is already listed.
	AppendLogsheet(ctx context.Context, userID, logID string) error
	RemoveLogsheet(ctx context.Context, userID, logID string) error

	Delete(ctx context.Context, id string) error
}

type Logsheets interface {
	Create(ctx context.Context, l logsheet.Logsheet) error
	GetByID(ctx context.Context, id string) (logsheet.Logsheet, error)
	// ListByIDs returns the rows that exist, oldest first.
	ListByIDs(ctx context.Context, ids []string) ([]logsheet.Logsheet, error)
	ListAll(ctx context.Context) ([]logsheet.Logsheet, error)
	Update(ctx context.Context, l logsheet.Logsheet) error
	Delete(ctx context.Context, id string) error
	DeleteByUsername(ctx context.Context, username string) (int64, error)
}

// TxFunc receives repositories bound to one transaction. Returning an error
// rolls every write back.
type TxFunc func(ctx context.Context, users Users, sheets Logsheets) error

type Store interface {
	Users() Users
	Logsheets() Logsheets
	InTx(ctx context.Context, fn TxFunc) error
}

type Courses interface {
	Create(ctx context.Context, c course.Course) error
	GetByID(ctx context.Context, id string) (course.Course, error)
	ListByCategory(ctx context.Context, category string) ([]course.Course, error)
	Update(ctx context.Context, c course.Course) error
	Delete(ctx context.Context, id string) error
}

type Videos interface {
	Create(ctx context.Context, v video.Video) error
	GetByID(ctx context.Context, id string) (video.Video, error)
	List(ctx context.Context) ([]video.Video, error)
	Update(ctx context.Context, v video.Video) error
	Delete(ctx context.Context, id string) error
}
