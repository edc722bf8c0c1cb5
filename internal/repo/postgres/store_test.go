package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapUserUniqueErr(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{constraint: "users_email_uniq", want: user.ErrDuplicateEmail},
		{constraint: "users_username_uniq", want: user.ErrDuplicateUsername},
		{constraint: "users_contact_number_uniq", want: user.ErrDuplicateContact},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			if got := mapUserUniqueErr(err); !errors.Is(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatalf("plain error is not a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected unique violation")
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
