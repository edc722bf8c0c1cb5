package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, id, email, contact string) {
	t.Helper()
	require.NoError(t, s.Users().Create(context.Background(), user.User{
		ID: id, Email: email, Username: id, ContactNumber: contact, Status: user.StatusApproved,
	}))
}

func TestStore_InTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUser(t, s, "u1", "a@example.com", "9876543210")

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context, users repo.Users, sheets repo.Logsheets) error {
		require.NoError(t, sheets.Create(ctx, logsheet.Logsheet{ID: "l1", Username: "u1"}))
		require.NoError(t, users.AppendLogsheet(ctx, "u1", "l1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	u, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.Logsheet)

	_, err = s.Logsheets().GetByID(ctx, "l1")
	assert.ErrorIs(t, err, logsheet.ErrNotFound)
}

func TestUsersRepo_UniqueFields(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUser(t, s, "u1", "a@example.com", "9876543210")

	err := s.Users().Create(ctx, user.User{ID: "u2", Email: "A@example.com", Username: "u2", ContactNumber: "9000000000"})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)

	err = s.Users().Create(ctx, user.User{ID: "u3", Email: "c@example.com", Username: "u3", ContactNumber: "9876543210"})
	assert.ErrorIs(t, err, user.ErrDuplicateContact)
}

func TestUsersRepo_RotateRefreshTokenHash(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUser(t, s, "u1", "a@example.com", "9876543210")

	old := "h1"
	require.NoError(t, s.Users().SetRefreshTokenHash(ctx, "u1", &old))

	ok, err := s.Users().RotateRefreshTokenHash(ctx, "u1", "h1", "h2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Users().RotateRefreshTokenHash(ctx, "u1", "h1", "h3")
	require.NoError(t, err)
	assert.False(t, ok)

	u, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u.RefreshTokenHash)
	assert.Equal(t, "h2", *u.RefreshTokenHash)
}

func TestUsersRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedUser(t, s, "u1", "a@example.com", "9876543210")
	require.NoError(t, s.Users().AppendLogsheet(ctx, "u1", "l1"))

	u, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	u.Logsheet[0] = "tampered"

	again, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, again.Logsheet)
}
