package user

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() RegisterRequest {
	return RegisterRequest{
		Username:        " Alice ",
		Name:            "Alice",
		Age:             "21",
		ContactNumber:   "9876543210",
		TermsAccepted:   "true",
		Email:           " Alice@Example.com ",
		Password:        "Abcdef1!",
		ConfirmPassword: "Abcdef1!",
		VehicleToLearn:  []string{"car, bike"},
	}
}

func TestRegisterRequest_ValidNormalises(t *testing.T) {
	reg, err := validRequest().Validate()
	require.NoError(t, err)

	assert.Equal(t, "alice", reg.Username)
	assert.Equal(t, "alice@example.com", reg.Email)
	assert.Equal(t, 21, reg.Age)
	assert.Equal(t, RoleCandidate, reg.Role)
	assert.Equal(t, []string{"car", "bike"}, reg.VehicleToLearn)
}

func TestRegisterRequest_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *RegisterRequest)
		field  string
	}{
		{name: "blank name", mutate: func(r *RegisterRequest) { r.Name = "   " }, field: "name"},
		{name: "missing age", mutate: func(r *RegisterRequest) { r.Age = "" }, field: "age"},
		{name: "age 17", mutate: func(r *RegisterRequest) { r.Age = "17" }, field: "age"},
		{name: "age not numeric", mutate: func(r *RegisterRequest) { r.Age = "eighteen" }, field: "age"},
		{name: "contact too short", mutate: func(r *RegisterRequest) { r.ContactNumber = "98765" }, field: "contactNumber"},
		{name: "contact bad prefix", mutate: func(r *RegisterRequest) { r.ContactNumber = "5876543210" }, field: "contactNumber"},
		{name: "terms false", mutate: func(r *RegisterRequest) { r.TermsAccepted = "false" }, field: "termsAccepted"},
		{name: "terms missing", mutate: func(r *RegisterRequest) { r.TermsAccepted = "" }, field: "termsAccepted"},
		{name: "bad email", mutate: func(r *RegisterRequest) { r.Email = "alice@example" }, field: "email"},
		{name: "weak password", mutate: func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "abcdef1", "abcdef1" }, field: "password"},
		{name: "password over 72 bytes", mutate: func(r *RegisterRequest) {
			r.Password = "Abcdef1!" + strings.Repeat("a", 72)
			r.ConfirmPassword = r.Password
		}, field: "password"},
		{name: "confirm mismatch", mutate: func(r *RegisterRequest) { r.ConfirmPassword = "Abcdef1?" }, field: "confirmPassword"},
		{name: "unknown role", mutate: func(r *RegisterRequest) { r.Role = "Admin" }, field: "role"},
		{name: "instructor without bio", mutate: func(r *RegisterRequest) {
			r.Role = "Instructor"
			r.Experience, r.License = "5 years", "DL-1"
			r.Specialties = []string{"manual"}
		}, field: "specialties"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := req.Validate()
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))

			details, ok := apperr.From(err).Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.field, details["field"])
		})
	}
}

func TestRegisterRequest_InstructorSpecialtiesSplit(t *testing.T) {
	req := validRequest()
	req.Role = "Instructor"
	req.Experience = "5 years"
	req.License = "DL-1"
	req.Bio = "Patient teacher"
	req.Specialties = []string{"manual, automatic ,night"}

	reg, err := req.Validate()
	require.NoError(t, err)

	assert.Equal(t, RoleInstructor, reg.Role)
	assert.Equal(t, []string{"manual", "automatic", "night"}, reg.Specialties)
}

func TestRegisterRequest_CandidateDropsInstructorFields(t *testing.T) {
	req := validRequest()
	req.Bio = "ignored"

	reg, err := req.Validate()
	require.NoError(t, err)
	assert.Empty(t, reg.Bio)
}

func TestValidPassword(t *testing.T) {
	cases := map[string]bool{
		"Abcdef1!":  true,
		"aB3$xy":    true,
		"abcdef1":   false,
		"ABCDEF1!":  false,
		"Abcdefg!":  false,
		"Abcdef12":  false,
		"Ab1!":      false,
		"Abcdef1!~": false,
		"Abcdéf1!":  false,
	}

	for pw, want := range cases {
		assert.Equal(t, want, ValidPassword(pw), pw)
	}
}

func TestStatusTransitions(t *testing.T) {
	token := "digest"
	u := User{Status: StatusPendingApproval, RefreshTokenHash: &token}
	assert.False(t, u.CanLogin())

	changed, err := u.Approve()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, u.CanLogin())

	changed, err = u.Approve()
	require.NoError(t, err)
	assert.False(t, changed, "second approval is a no-op")

	changed, err = u.Suspend()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, u.CanLogin())
	assert.Nil(t, u.RefreshTokenHash)

	changed, err = u.Approve()
	require.NoError(t, err)
	assert.True(t, changed)

	pending := User{Status: StatusPendingApproval}
	_, err = pending.Suspend()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUser_MarshalJSONHidesSecrets(t *testing.T) {
	token := "digest"
	u := User{ID: "u1", PasswordHash: "hash", RefreshTokenHash: &token, Status: StatusApproved}

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))

	assert.Equal(t, true, out["isApproved"])
	assert.NotContains(t, out, "PasswordHash")
	assert.NotContains(t, out, "password")
	assert.NotContains(t, out, "RefreshTokenHash")
	assert.NotContains(t, string(b), "digest")
	assert.Equal(t, []interface{}{}, out["logsheet"])
}

func TestUpdateProfileRequest_Apply(t *testing.T) {
	u := User{Name: "Old", ContactNumber: "9876543210"}

	changed, err := UpdateProfileRequest{Name: " New ", ContactNumber: "9123456780"}.Apply(&u)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "New", u.Name)
	assert.Equal(t, "9123456780", u.ContactNumber)

	_, err = UpdateProfileRequest{ContactNumber: "123"}.Apply(&u)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
