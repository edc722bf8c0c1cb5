// Package logsheets keeps each user's logsheet id list and the logsheet rows
// consistent. Every write that touches both sides runs in one transaction.
package logsheets

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/repo"
)

type Service struct {
	store  repo.Store
	logger *slog.Logger
}

func New(store repo.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Upload creates a logsheet owned by userID and appends its id to the user's list.
func (s *Service) Upload(ctx context.Context, userID string, req logsheet.CreateRequest) (logsheet.Logsheet, error) {
	var created logsheet.Logsheet

	err := s.store.InTx(ctx, func(ctx context.Context, users repo.Users, sheets repo.Logsheets) error {
		u, err := getUser(ctx, users, userID)
		if err != nil {
			return err
		}

		created = logsheet.NewFromCreateRequest(u.Username, req)

		if err := sheets.Create(ctx, created); err != nil {
			return err
		}
		return users.AppendLogsheet(ctx, u.ID, created.ID)
	})

	if err != nil {
		return logsheet.Logsheet{}, wrap(err, "Something went wrong while uploading the logsheet")
	}
	return created, nil
}

// Update applies a partial update to a logsheet listed by userID.
func (s *Service) Update(ctx context.Context, userID, logID string, req logsheet.UpdateRequest) (logsheet.Logsheet, error) {
	users := s.store.Users()
	sheets := s.store.Logsheets()

	u, err := getUser(ctx, users, userID)
	if err != nil {
		return logsheet.Logsheet{}, err
	}

	if !u.OwnsLogsheet(logID) {
		return logsheet.Logsheet{}, errNotOwner()
	}

	l, err := sheets.GetByID(ctx, logID)
	if err != nil {
		return logsheet.Logsheet{}, wrap(err, "Something went wrong while updating the logsheet")
	}

	if !req.Apply(&l) {
		return l, nil
	}

	if err := sheets.Update(ctx, l); err != nil {
		return logsheet.Logsheet{}, wrap(err, "Something went wrong while updating the logsheet")
	}
	return l, nil
}

// Delete removes a logsheet listed by userID and pulls its id from the list.
func (s *Service) Delete(ctx context.Context, userID, logID string) (logsheet.Logsheet, error) {
	var deleted logsheet.Logsheet

	err := s.store.InTx(ctx, func(ctx context.Context, users repo.Users, sheets repo.Logsheets) error {
		u, err := getUser(ctx, users, userID)
		if err != nil {
			return err
		}

		if !u.OwnsLogsheet(logID) {
			return errNotOwner()
		}

		deleted, err = sheets.GetByID(ctx, logID)
		if err != nil {
			return err
		}

		if err := sheets.Delete(ctx, logID); err != nil {
			return err
		}
		return users.RemoveLogsheet(ctx, u.ID, logID)
	})

	if err != nil {
		return logsheet.Logsheet{}, wrap(err, "Something went wrong while deleting the logsheet")
	}
	return deleted, nil
}

// ListForUser resolves the user's id list, oldest first. Ids without a row
// are skipped.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]logsheet.Logsheet, error) {
	u, err := getUser(ctx, s.store.Users(), userID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.Logsheets().ListByIDs(ctx, u.Logsheet)
	if err != nil {
		return nil, wrap(err, "Something went wrong while getting the logsheets")
	}
	return items, nil
}

// DeleteUserCascade deletes the user together with every logsheet carrying
// their username.
func (s *Service) DeleteUserCascade(ctx context.Context, userID string) (user.User, error) {
	var deleted user.User

	err := s.store.InTx(ctx, func(ctx context.Context, users repo.Users, sheets repo.Logsheets) error {
		u, err := getUser(ctx, users, userID)
		if err != nil {
			return err
		}
		deleted = u

		n, err := sheets.DeleteByUsername(ctx, u.Username)
		if err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "user deleted", "user_id", u.ID, "logsheets_deleted", n)
		return users.Delete(ctx, u.ID)
	})

	if err != nil {
		return user.User{}, wrap(err, "Something went wrong while deleting the user")
	}
	return deleted, nil
}

func getUser(ctx context.Context, users repo.Users, id string) (user.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, apperr.NotFound("user_not_found", "User not found")
		}
		return user.User{}, apperr.Internal("Something went wrong", err)
	}
	return u, nil
}

func errNotOwner() *apperr.Error {
	return apperr.Forbidden("forbidden", "You are not authorized to modify this logsheet")
}

// wrap keeps tagged errors, maps store sentinels and hides everything else.
func wrap(err error, internalMsg string) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, logsheet.ErrNotFound):
		return apperr.NotFound("logsheet_not_found", "Logsheet not found")
	case errors.Is(err, user.ErrNotFound):
		return apperr.NotFound("user_not_found", "User not found")
	default:
		return apperr.Internal(internalMsg, err)
	}
}
