package user

import (
	"encoding/json"
	"errors"
	"slices"
	"time"
)

type Role string

const (
	RoleCandidate  Role = "Candidate"
	RoleInstructor Role = "Instructor"
)

func (r Role) IsValid() bool {
	return r == RoleCandidate || r == RoleInstructor
}

// Status is the approval state. Login is only possible while approved.
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusSuspended       Status = "suspended"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateContact  = errors.New("contact number already registered")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type User struct {
	ID             string   `json:"id"`
	Role           Role     `json:"role"`
	Name           string   `json:"name"`
	Age            int      `json:"age"`
	Address        string   `json:"address"`
	ContactNumber  string   `json:"contactNumber"`
	VehicleToLearn []string `json:"vehicleToLearn"`
	Email          string   `json:"email"`
	Username       string   `json:"username"`

	Experience  string   `json:"experience,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	License     string   `json:"license,omitempty"`
	Bio         string   `json:"bio,omitempty"`

	Avatar string `json:"avatar"`

	PasswordHash     string  `json:"-"` // never expose hash in JSON
	RefreshTokenHash *string `json:"-"`

	Status                Status   `json:"status"`
	IsCertificateEligible bool     `json:"isCertificateEligible"`
	Logsheet              []string `json:"logsheet"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarshalJSON adds the derived isApproved flag clients expect.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User

	out := struct {
		plain
		IsApproved bool `json:"isApproved"`
	}{
		plain:      plain(u),
		IsApproved: u.IsApproved(),
	}

	if out.VehicleToLearn == nil {
		out.VehicleToLearn = []string{}
	}
	if out.Logsheet == nil {
		out.Logsheet = []string{}
	}

	return json.Marshal(out)
}

func (u *User) IsApproved() bool {
	return u.Status == StatusApproved
}

func (u *User) CanLogin() bool {
	return u.Status == StatusApproved
}

// Approve moves a pending or suspended user to approved. changed is false when
// the user was already approved.
func (u *User) Approve() (changed bool, err error) {
	switch u.Status {
	case StatusApproved:
		return false, nil
	case StatusPendingApproval, StatusSuspended:
		u.Status = StatusApproved
		return true, nil
	default:
		return false, ErrInvalidTransition
	}
}

// Suspend is only valid from approved. A suspended user loses its session.
func (u *User) Suspend() (changed bool, err error) {
	switch u.Status {
	case StatusSuspended:
		return false, nil
	case StatusApproved:
		u.Status = StatusSuspended
		u.RefreshTokenHash = nil
		return true, nil
	default:
		return false, ErrInvalidTransition
	}
}

func (u *User) OwnsLogsheet(logID string) bool {
	return slices.Contains(u.Logsheet, logID)
}

// ListFilter narrows List; an empty Role lists everyone. ForUpdate locks the
// returned rows until the surrounding transaction ends.
type ListFilter struct {
	Role      Role
	ForUpdate bool
}

// IsOwner reports whether u is the academy owner configured by email.
func (u *User) IsOwner(ownerEmail string) bool {
	return ownerEmail != "" && NormalizeEmail(u.Email) == NormalizeEmail(ownerEmail)
}
