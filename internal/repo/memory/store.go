// Package memory is an in-process store used by tests and by STORE=memory.
// InTx holds the store lock for the whole callback and restores a snapshot
// when the callback fails.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/repo"
)

type Store struct {
	mu        sync.Mutex
	users     map[string]user.User
	logsheets map[string]logsheet.Logsheet
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]user.User),
		logsheets: make(map[string]logsheet.Logsheet),
	}
}

func (s *Store) Users() repo.Users {
	return &usersRepo{s: s}
}

func (s *Store) Logsheets() repo.Logsheets {
	return &logsheetsRepo{s: s}
}

func (s *Store) InTx(ctx context.Context, fn repo.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[string]user.User, len(s.users))
	for id, u := range s.users {
		users[id] = cloneUser(u)
	}
	sheets := make(map[string]logsheet.Logsheet, len(s.logsheets))
	for id, l := range s.logsheets {
		sheets[id] = l
	}

	if err := fn(ctx, &usersRepo{s: s, inTx: true}, &logsheetsRepo{s: s, inTx: true}); err != nil {
		s.users = users
		s.logsheets = sheets
		return err
	}

	return nil
}

// lock is a no-op inside InTx, which already holds the mutex.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func cloneUser(u user.User) user.User {
	u.VehicleToLearn = slices.Clone(u.VehicleToLearn)
	u.Specialties = slices.Clone(u.Specialties)
	u.Logsheet = slices.Clone(u.Logsheet)
	if u.RefreshTokenHash != nil {
		h := *u.RefreshTokenHash
		u.RefreshTokenHash = &h
	}
	return u
}

type usersRepo struct {
	s    *Store
	inTx bool
}

func (r *usersRepo) Create(ctx context.Context, u user.User) error {
	defer r.s.lock(r.inTx)()

	for _, existing := range r.s.users {
		switch {
		case strings.EqualFold(existing.Email, u.Email):
			return user.ErrDuplicateEmail
		case strings.EqualFold(existing.Username, u.Username):
			return user.ErrDuplicateUsername
		case existing.ContactNumber == u.ContactNumber:
			return user.ErrDuplicateContact
		}
	}

	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	defer r.s.lock(r.inTx)()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	defer r.s.lock(r.inTx)()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *usersRepo) ContactInUse(ctx context.Context, contact, excludeID string) (bool, error) {
	defer r.s.lock(r.inTx)()

	for _, u := range r.s.users {
		if u.ContactNumber == contact && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *usersRepo) UsernameInUse(ctx context.Context, username string) (bool, error) {
	defer r.s.lock(r.inTx)()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *usersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	defer r.s.lock(r.inTx)()

	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, cloneUser(u))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *usersRepo) UpdateProfile(ctx context.Context, u user.User) error {
	return r.mutate(u.ID, func(stored *user.User) error {
		for id, other := range r.s.users {
			if id != u.ID && other.ContactNumber == u.ContactNumber {
				return user.ErrDuplicateContact
			}
		}

		stored.Name = u.Name
		stored.Bio = u.Bio
		stored.Address = u.Address
		stored.ContactNumber = u.ContactNumber
		stored.License = u.License
		stored.Experience = u.Experience
		stored.Specialties = slices.Clone(u.Specialties)
		stored.Avatar = u.Avatar
		return nil
	})
}

func (r *usersRepo) SetStatus(ctx context.Context, id string, status user.Status) error {
	return r.mutate(id, func(stored *user.User) error {
		stored.Status = status
		if status == user.StatusSuspended {
			stored.RefreshTokenHash = nil
		}
		return nil
	})
}

func (r *usersRepo) SetCertificateEligible(ctx context.Context, id string, eligible bool) error {
	return r.mutate(id, func(stored *user.User) error {
		stored.IsCertificateEligible = eligible
		return nil
	})
}

func (r *usersRepo) SetRefreshTokenHash(ctx context.Context, id string, hash *string) error {
	return r.mutate(id, func(stored *user.User) error {
		if hash == nil {
			stored.RefreshTokenHash = nil
			return nil
		}
		h := *hash
		stored.RefreshTokenHash = &h
		return nil
	})
}

func (r *usersRepo) RotateRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	rotated := false

	err := r.mutate(id, func(stored *user.User) error {
		if stored.RefreshTokenHash == nil || *stored.RefreshTokenHash != oldHash {
			return nil
		}
		h := newHash
		stored.RefreshTokenHash = &h
		rotated = true
		return nil
	})

	return rotated, err
}

func (r *usersRepo) AppendLogsheet(ctx context.Context, userID, logID string) error {
	return r.mutate(userID, func(stored *user.User) error {
		if !slices.Contains(stored.Logsheet, logID) {
			stored.Logsheet = append(stored.Logsheet, logID)
		}
		return nil
	})
}

func (r *usersRepo) RemoveLogsheet(ctx context.Context, userID, logID string) error {
	return r.mutate(userID, func(stored *user.User) error {
		stored.Logsheet = slices.DeleteFunc(stored.Logsheet, func(id string) bool { return id == logID })
		return nil
	})
}

func (r *usersRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(r.inTx)()

	if _, ok := r.s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *usersRepo) mutate(id string, fn func(stored *user.User) error) error {
	defer r.s.lock(r.inTx)()

	stored, ok := r.s.users[id]
	if !ok {
		return user.ErrNotFound
	}

	stored = cloneUser(stored)
	if err := fn(&stored); err != nil {
		return err
	}

	stored.UpdatedAt = now()
	r.s.users[id] = stored
	return nil
}

type logsheetsRepo struct {
	s    *Store
	inTx bool
}

func (r *logsheetsRepo) Create(ctx context.Context, l logsheet.Logsheet) error {
	defer r.s.lock(r.inTx)()

	r.s.logsheets[l.ID] = l
	return nil
}

func (r *logsheetsRepo) GetByID(ctx context.Context, id string) (logsheet.Logsheet, error) {
	defer r.s.lock(r.inTx)()

	l, ok := r.s.logsheets[id]
	if !ok {
		return logsheet.Logsheet{}, logsheet.ErrNotFound
	}
	return l, nil
}

func (r *logsheetsRepo) ListByIDs(ctx context.Context, ids []string) ([]logsheet.Logsheet, error) {
	defer r.s.lock(r.inTx)()

	out := make([]logsheet.Logsheet, 0, len(ids))
	for _, id := range ids {
		if l, ok := r.s.logsheets[id]; ok {
			out = append(out, l)
		}
	}

	sortByCreated(out)
	return out, nil
}

func (r *logsheetsRepo) ListAll(ctx context.Context) ([]logsheet.Logsheet, error) {
	defer r.s.lock(r.inTx)()

	out := make([]logsheet.Logsheet, 0, len(r.s.logsheets))
	for _, l := range r.s.logsheets {
		out = append(out, l)
	}

	sortByCreated(out)
	return out, nil
}

func (r *logsheetsRepo) Update(ctx context.Context, l logsheet.Logsheet) error {
	defer r.s.lock(r.inTx)()

	if _, ok := r.s.logsheets[l.ID]; !ok {
		return logsheet.ErrNotFound
	}
	r.s.logsheets[l.ID] = l
	return nil
}

func (r *logsheetsRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock(r.inTx)()

	if _, ok := r.s.logsheets[id]; !ok {
		return logsheet.ErrNotFound
	}
	delete(r.s.logsheets, id)
	return nil
}

func (r *logsheetsRepo) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	defer r.s.lock(r.inTx)()

	var n int64
	for id, l := range r.s.logsheets {
		if l.Username == username {
			delete(r.s.logsheets, id)
			n++
		}
	}
	return n, nil
}

func sortByCreated(items []logsheet.Logsheet) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
